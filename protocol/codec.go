package protocol

import (
	"bytes"
	"compress/zlib"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
)

// MaxPacketDataSize is the largest decompressed packet payload the protocol
// allows.
const MaxPacketDataSize = 8388608

// MaxPacketSize is the largest framed packet (length-prefix included) the
// protocol allows: 2^21 - 1 bytes, the largest value a 3-byte VarInt can
// represent.
const MaxPacketSize = 2097151

var (
	// ErrPacketTooLong is returned when a packet would exceed MaxPacketSize
	// or MaxPacketDataSize.
	ErrPacketTooLong = errors.New("protocol: packet too long")
	// ErrAlreadyEncrypted is returned by SetEncryption if the stream has
	// already had a cipher installed, matching the upstream protocol's
	// refusal to re-key an established connection.
	ErrAlreadyEncrypted = errors.New("protocol: stream already encrypted")
)

// Encoder writes length-framed, optionally compressed and encrypted packets
// to an underlying io.Writer, mirroring the compress-then-encrypt pipeline
// described for the server's outbound half of the connection.
type Encoder struct {
	w   io.Writer
	enc cipher.Stream

	compressionThreshold int
	compressionEnabled   bool
}

// NewEncoder wraps w. Compression is disabled until SetCompression is called.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, compressionThreshold: -1}
}

// SetCompression enables zlib compression for payloads at or above
// threshold bytes. A negative threshold disables compression again.
func (e *Encoder) SetCompression(threshold int) {
	e.compressionThreshold = threshold
	e.compressionEnabled = threshold >= 0
}

// SetEncryption installs an AES-128/CFB8 stream keyed by key, which also
// serves as the initialization vector per the protocol's handshake.
func (e *Encoder) SetEncryption(key []byte) error {
	if e.enc != nil {
		return ErrAlreadyEncrypted
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("protocol: init encryption cipher: %w", err)
	}
	e.enc = newCFB8Encrypter(block, key)
	return nil
}

// WritePacket frames, optionally compresses, and writes a complete packet
// (packetID followed by its payload bytes) to the underlying writer.
func (e *Encoder) WritePacket(packetID int32, payload []byte) error {
	var body bytes.Buffer
	if err := WriteVarInt(&body, packetID); err != nil {
		return err
	}
	body.Write(payload)

	if body.Len() > MaxPacketDataSize {
		return fmt.Errorf("%w: %d bytes", ErrPacketTooLong, body.Len())
	}

	var framed bytes.Buffer
	switch {
	case !e.compressionEnabled:
		if err := WriteVarInt(&framed, int32(body.Len())); err != nil {
			return err
		}
		framed.Write(body.Bytes())
	case body.Len() < e.compressionThreshold:
		// below threshold: data length prefix of 0 signals "not compressed"
		var inner bytes.Buffer
		WriteVarInt(&inner, 0)
		inner.Write(body.Bytes())
		if err := WriteVarInt(&framed, int32(inner.Len())); err != nil {
			return err
		}
		framed.Write(inner.Bytes())
	default:
		var compressed bytes.Buffer
		zw := zlib.NewWriter(&compressed)
		if _, err := zw.Write(body.Bytes()); err != nil {
			return fmt.Errorf("protocol: compress packet: %w", err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("protocol: compress packet: %w", err)
		}
		var inner bytes.Buffer
		if err := WriteVarInt(&inner, int32(body.Len())); err != nil {
			return err
		}
		inner.Write(compressed.Bytes())
		if err := WriteVarInt(&framed, int32(inner.Len())); err != nil {
			return err
		}
		framed.Write(inner.Bytes())
	}

	if framed.Len() > MaxPacketSize {
		return fmt.Errorf("%w: %d bytes", ErrPacketTooLong, framed.Len())
	}

	out := framed.Bytes()
	if e.enc != nil {
		encrypted := make([]byte, len(out))
		e.enc.XORKeyStream(encrypted, out)
		out = encrypted
	}
	_, err := e.w.Write(out)
	return err
}

// Decoder reads length-framed, optionally decompressed and decrypted packets
// from an underlying io.Reader.
type Decoder struct {
	r   io.Reader
	dec cipher.Stream

	compressionEnabled bool
}

// NewDecoder wraps r. Compression is disabled until SetCompression is called.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// SetCompression enables zlib decompression of inbound packets. The
// threshold itself is only meaningful to the encoding side; the decoder only
// needs to know compression is active.
func (d *Decoder) SetCompression(enabled bool) {
	d.compressionEnabled = enabled
}

// SetEncryption installs an AES-128/CFB8 stream keyed by key.
func (d *Decoder) SetEncryption(key []byte) error {
	if d.dec != nil {
		return ErrAlreadyEncrypted
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("protocol: init decryption cipher: %w", err)
	}
	d.dec = newCFB8Decrypter(block, key)
	return nil
}

// cryptoReader wraps the underlying reader so every byte read passes through
// the installed stream cipher, if any, one byte at a time matching CFB-8's
// self-synchronizing design.
type cryptoReader struct {
	r    io.Reader
	dec  cipher.Stream
	byte [1]byte
}

func (c *cryptoReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 && c.dec != nil {
		c.dec.XORKeyStream(p[:n], p[:n])
	}
	return n, err
}

// ReadPacket reads and returns the next packet's id and decompressed
// payload.
func (d *Decoder) ReadPacket() (int32, []byte, error) {
	src := d.r
	if d.dec != nil {
		src = &cryptoReader{r: d.r, dec: d.dec}
	}

	length, err := ReadVarInt(src)
	if err != nil {
		return 0, nil, err
	}
	if length < 0 || int(length) > MaxPacketSize {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrPacketTooLong, length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(src, buf); err != nil {
		return 0, nil, err
	}

	body := bytes.NewReader(buf)
	if !d.compressionEnabled {
		return readPacketIDAndPayload(body)
	}

	dataLen, err := ReadVarInt(body)
	if err != nil {
		return 0, nil, err
	}
	if dataLen == 0 {
		return readPacketIDAndPayload(body)
	}
	if int(dataLen) > MaxPacketDataSize {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrPacketTooLong, dataLen)
	}
	zr, err := zlib.NewReader(body)
	if err != nil {
		return 0, nil, fmt.Errorf("protocol: decompress packet: %w", err)
	}
	defer zr.Close()
	decompressed := make([]byte, dataLen)
	if _, err := io.ReadFull(zr, decompressed); err != nil {
		return 0, nil, fmt.Errorf("protocol: decompress packet: %w", err)
	}
	return readPacketIDAndPayload(bytes.NewReader(decompressed))
}

func readPacketIDAndPayload(r *bytes.Reader) (int32, []byte, error) {
	id, err := ReadVarInt(r)
	if err != nil {
		return 0, nil, err
	}
	payload := make([]byte, r.Len())
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return id, payload, nil
}
