package protocol

import "crypto/cipher"

// cfb8 implements CFB-8 (8-bit segment feedback) stream cipher mode over a
// block cipher, keyed once with a 16-byte secret reused as the IV. The
// protocol requires this exact mode; Go's crypto/cipher only ships
// full-block-feedback CFB, so it is implemented directly here rather than
// pulled from a library (none in the corpus provide it either).
type cfb8 struct {
	block     cipher.Block
	iv        []byte
	decrypt   bool
	blockSize int
}

func newCFB8(block cipher.Block, iv []byte, decrypt bool) *cfb8 {
	shiftReg := make([]byte, len(iv))
	copy(shiftReg, iv)
	return &cfb8{block: block, iv: shiftReg, decrypt: decrypt, blockSize: block.BlockSize()}
}

// newCFB8Encrypter returns a cipher.Stream performing CFB-8 encryption.
func newCFB8Encrypter(block cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(block, iv, false)
}

// newCFB8Decrypter returns a cipher.Stream performing CFB-8 decryption.
func newCFB8Decrypter(block cipher.Block, iv []byte) cipher.Stream {
	return newCFB8(block, iv, true)
}

func (c *cfb8) XORKeyStream(dst, src []byte) {
	tmp := make([]byte, c.blockSize)
	for i := range src {
		c.block.Encrypt(tmp, c.iv)
		out := src[i] ^ tmp[0]

		// shift register left by one byte, append the ciphertext byte
		copy(c.iv, c.iv[1:])
		if c.decrypt {
			c.iv[len(c.iv)-1] = src[i]
		} else {
			c.iv[len(c.iv)-1] = out
		}
		dst[i] = out
	}
}
