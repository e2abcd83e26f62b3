package push

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// RFC 8188 aes128gcm header: salt (16) | record size (4) | key id length (1) | key id.
const (
	saltLength     = 16
	headerFixedLen = saltLength + 4 + 1
	gcmTagLength   = 16
	nonceLength    = 12
	cekLength      = 16
)

var (
	ErrMalformedCiphertext = errors.New("malformed aes128gcm ciphertext")
	ErrInvalidPadding      = errors.New("invalid record padding")
)

// Decrypt decodes an aes128gcm push message body (RFC 8291) addressed to
// this subscription. The sender's ephemeral public key travels in the
// content coding header's key id field.
func (s *Subscription) Decrypt(body []byte) ([]byte, error) {
	if len(body) < headerFixedLen {
		return nil, ErrMalformedCiphertext
	}

	salt := body[:saltLength]
	recordSize := binary.BigEndian.Uint32(body[saltLength : saltLength+4])
	idLen := int(body[saltLength+4])
	if recordSize < headerFixedLen || len(body) < headerFixedLen+idLen {
		return nil, ErrMalformedCiphertext
	}

	senderPublic, err := ecdh.P256().NewPublicKey(body[headerFixedLen : headerFixedLen+idLen])
	if err != nil {
		return nil, fmt.Errorf("invalid sender public key: %w", err)
	}

	priv, err := s.privateKey()
	if err != nil {
		return nil, err
	}
	auth, err := s.authSecret()
	if err != nil {
		return nil, err
	}

	sharedSecret, err := priv.ECDH(senderPublic)
	if err != nil {
		return nil, fmt.Errorf("ECDH agreement failed: %w", err)
	}

	// RFC 8291 §3.3-3.4: combine the shared secret with the auth secret,
	// then derive the content encryption key and nonce from the salt.
	keyInfo := make([]byte, 0, 144)
	keyInfo = append(keyInfo, []byte("WebPush: info\x00")...)
	keyInfo = append(keyInfo, priv.PublicKey().Bytes()...)
	keyInfo = append(keyInfo, senderPublic.Bytes()...)

	ikm := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, sharedSecret, auth, keyInfo), ikm); err != nil {
		return nil, fmt.Errorf("failed to derive input keying material: %w", err)
	}

	cek := make([]byte, cekLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, salt, []byte("Content-Encoding: aes128gcm\x00")), cek); err != nil {
		return nil, fmt.Errorf("failed to derive content encryption key: %w", err)
	}

	nonce := make([]byte, nonceLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, salt, []byte("Content-Encoding: nonce\x00")), nonce); err != nil {
		return nil, fmt.Errorf("failed to derive nonce: %w", err)
	}

	record := body[headerFixedLen+idLen:]
	if len(record) < gcmTagLength {
		return nil, ErrMalformedCiphertext
	}

	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, nonce, record, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt push record: %w", err)
	}

	return stripPadding(plaintext)
}

// stripPadding removes the RFC 8188 delimiter: plaintext, then 0x02 for the
// final record, then any number of zero bytes.
func stripPadding(record []byte) ([]byte, error) {
	i := len(record) - 1
	for i >= 0 && record[i] == 0x00 {
		i--
	}
	if i < 0 || record[i] != 0x02 {
		return nil, ErrInvalidPadding
	}
	return record[:i], nil
}
