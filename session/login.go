package session

import (
	"bytes"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"fmt"
	"math/big"

	"github.com/kilnmc/kiln/protocol"
)

// handleLogin processes the Login-state packets: Login Start (0x00),
// Encryption Response (0x01), and Login Acknowledged (0x03, transitions to
// Configuration). Encryption Request/Success are sent by this side in
// response.
func (c *Connection) handleLogin(id int32, payload []byte) error {
	switch id {
	case 0x00:
		return c.handleLoginStart(payload)
	case 0x01:
		return c.handleEncryptionResponse(payload)
	case 0x03:
		if c.profile == nil {
			return fmt.Errorf("session: login acknowledged before login success")
		}
		c.state = StateConfiguration
		return nil
	default:
		return fmt.Errorf("session: unexpected packet 0x%02X in login", id)
	}
}

func (c *Connection) handleLoginStart(payload []byte) error {
	r := bytes.NewReader(payload)
	username, err := protocol.ReadString(r)
	if err != nil {
		return fmt.Errorf("read username: %w", err)
	}
	var uuidBytes [16]byte
	if _, err := r.Read(uuidBytes[:]); err != nil {
		return fmt.Errorf("read uuid: %w", err)
	}
	c.loginUsername = username
	c.loginUUID = uuidBytes

	if c.rsaKey == nil {
		// no encryption configured: accept immediately (offline mode)
		return c.finishLogin(username, uuidBytes)
	}

	token, err := generateVerifyToken()
	if err != nil {
		return err
	}
	c.verifyToken = token

	var buf bytes.Buffer
	if err := protocol.WriteString(&buf, "kiln"); err != nil {
		return err
	}
	der, err := x509.MarshalPKIXPublicKey(&c.rsaKey.PublicKey)
	if err != nil {
		return fmt.Errorf("marshal public key: %w", err)
	}
	if err := protocol.WriteVarInt(&buf, int32(len(der))); err != nil {
		return err
	}
	buf.Write(der)
	if err := protocol.WriteVarInt(&buf, int32(len(token))); err != nil {
		return err
	}
	buf.Write(token)
	if err := protocol.WriteBool(&buf, true); err != nil { // authenticate: yes
		return err
	}
	return c.SendPacket(0x01, buf.Bytes())
}

func (c *Connection) handleEncryptionResponse(payload []byte) error {
	r := bytes.NewReader(payload)
	sharedSecretLen, err := protocol.ReadVarInt(r)
	if err != nil {
		return fmt.Errorf("read shared secret length: %w", err)
	}
	sharedSecretEnc := make([]byte, sharedSecretLen)
	if _, err := r.Read(sharedSecretEnc); err != nil {
		return fmt.Errorf("read shared secret: %w", err)
	}
	tokenLen, err := protocol.ReadVarInt(r)
	if err != nil {
		return fmt.Errorf("read verify token length: %w", err)
	}
	tokenEnc := make([]byte, tokenLen)
	if _, err := r.Read(tokenEnc); err != nil {
		return fmt.Errorf("read verify token: %w", err)
	}

	sharedSecret, err := rsa.DecryptPKCS1v15(nil, c.rsaKey, sharedSecretEnc)
	if err != nil {
		return fmt.Errorf("decrypt shared secret: %w", err)
	}
	token, err := rsa.DecryptPKCS1v15(nil, c.rsaKey, tokenEnc)
	if err != nil {
		return fmt.Errorf("decrypt verify token: %w", err)
	}
	if !bytes.Equal(token, c.verifyToken) {
		return fmt.Errorf("verify token mismatch")
	}

	var encErr error
	if err := c.enqueueEncoderAction(func() { encErr = c.enc.SetEncryption(sharedSecret) }); err != nil {
		return err
	}
	if encErr != nil {
		return encErr
	}
	if err := c.dec.SetEncryption(sharedSecret); err != nil {
		return err
	}

	if c.authenticator != nil {
		der, err := x509.MarshalPKIXPublicKey(&c.rsaKey.PublicKey)
		if err != nil {
			return fmt.Errorf("marshal public key: %w", err)
		}
		hash := sessionHash(sharedSecret, der)
		profile, err := c.authenticator(c.loginUsername, hash)
		if err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
		return c.finishLogin(profile.Username, profile.UUID)
	}
	return c.finishLogin(c.loginUsername, c.loginUUID)
}

func (c *Connection) finishLogin(username string, id [16]byte) error {
	c.profile = &Profile{Username: username, UUID: id}

	var buf bytes.Buffer
	buf.Write(id[:])
	if err := protocol.WriteString(&buf, username); err != nil {
		return err
	}
	if err := protocol.WriteVarInt(&buf, 0); err != nil { // zero properties
		return err
	}
	return c.SendPacket(0x02, buf.Bytes())
}

// EnableCompression switches the connection to compressed packets above
// threshold bytes, sending the Set Compression packet first.
func (c *Connection) EnableCompression(threshold int) error {
	var buf bytes.Buffer
	if err := protocol.WriteVarInt(&buf, int32(threshold)); err != nil {
		return err
	}
	if err := c.SendPacket(0x03, buf.Bytes()); err != nil {
		return err
	}
	c.compressionThreshold = threshold
	if err := c.enqueueEncoderAction(func() { c.enc.SetCompression(threshold) }); err != nil {
		return err
	}
	c.dec.SetCompression(true)
	return nil
}

// sessionHash computes the SHA-1-based "server hash" used to authenticate
// with Mojang's session server: SHA-1("" + sharedSecret + publicKeyDER),
// formatted as a signed hex digest (Minecraft's historical quirk).
func sessionHash(sharedSecret, publicKeyDER []byte) string {
	h := sha1.New()
	h.Write(sharedSecret)
	h.Write(publicKeyDER)
	digest := h.Sum(nil)

	negative := digest[0]&0x80 != 0
	n := new(big.Int).SetBytes(digest)
	if negative {
		n = twosComplementNegate(n, len(digest))
		return "-" + n.Text(16)
	}
	return n.Text(16)
}

func twosComplementNegate(n *big.Int, byteLen int) *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), uint(byteLen*8))
	return new(big.Int).Sub(max, n)
}

