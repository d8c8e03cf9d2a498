//
// peerlink.go
//
// Copyright (c) 2025 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"

	"github.com/markkurossi/gmw/ot"
	"github.com/markkurossi/gmw/ot/mpint"
)

const (
	aesKeySize  = 16
	hmacKeySize = 32

	tagInitialShare byte = 10
	tagFinalGossip  byte = 11
)

// PeerLink is an authenticated, encrypted channel to one other party
// in a GMW computation. It is built on top of a raw framed Conn: a
// Diffie-Hellman key exchange (KeyExchange) derives a per-link AES
// key and HMAC key, after which every message sent or received is
// transparently AES-CBC encrypted and HMAC-SHA256 tagged.
//
// PeerLink implements ot.IO, so the oblivious transfer package can
// talk directly over an already-keyed PeerLink: OT messages travel
// inside the same authenticated envelope as everything else.
type PeerLink struct {
	conn    *Conn
	group   *ot.Group
	aesKey  []byte
	hmacKey []byte
}

var _ ot.IO = &PeerLink{}

// NewPeerLink wraps a connected Conn. The link carries no cryptographic
// state until KeyExchange runs.
func NewPeerLink(conn *Conn) *PeerLink {
	return &PeerLink{
		conn:  conn,
		group: ot.DefaultGroup,
	}
}

// Close closes the underlying connection.
func (pl *PeerLink) Close() error {
	return pl.conn.Close()
}

// KeyExchange performs a Diffie-Hellman key exchange over the link's
// fixed group and derives the link's AES and HMAC keys from the
// resulting shared secret.
//
// sendFirst controls only the wire order of the two public values,
// not the result: both ends reach the same keys regardless of which
// one speaks first. The Mesh Connector assigns sendFirst to the
// higher-indexed party of each pair and !sendFirst to the
// lower-indexed one, so that of the two parties sharing a link,
// exactly one sends first.
func (pl *PeerLink) KeyExchange(sendFirst bool) error {
	priv, err := pl.group.RandomExponent(rand.Reader)
	if err != nil {
		return err
	}
	pub := mpint.Exp(pl.group.G, priv, pl.group.P)

	var peerPub *big.Int
	if sendFirst {
		if err := pl.sendPublicValue(pub); err != nil {
			return err
		}
		peerPub, err = pl.receivePublicValue()
		if err != nil {
			return err
		}
	} else {
		peerPub, err = pl.receivePublicValue()
		if err != nil {
			return err
		}
		if err := pl.sendPublicValue(pub); err != nil {
			return err
		}
	}

	shared := mpint.Exp(peerPub, priv, pl.group.P)

	r := hkdf.New(sha256.New, shared.Bytes(), nil, []byte("mpc/p2p/peerlink"))
	keys := make([]byte, aesKeySize+hmacKeySize)
	if _, err := io.ReadFull(r, keys); err != nil {
		return err
	}
	pl.aesKey = keys[:aesKeySize]
	pl.hmacKey = keys[aesKeySize:]
	return nil
}

func (pl *PeerLink) sendPublicValue(pub *big.Int) error {
	if err := pl.conn.SendData(pub.Bytes()); err != nil {
		return err
	}
	return pl.conn.Flush()
}

func (pl *PeerLink) receivePublicValue() (*big.Int, error) {
	data, err := pl.conn.ReceiveData()
	if err != nil {
		return nil, wrapDisconnect(err)
	}
	v := mpint.FromBytes(data)
	if !pl.group.InRange(v) {
		return nil, ErrGroupElementOutOfRange
	}
	return v, nil
}

// SendData encrypts val under the link's AES key, tags the result
// with HMAC-SHA256 under the link's HMAC key, and sends the envelope.
func (pl *PeerLink) SendData(val []byte) error {
	if pl.aesKey == nil {
		return fmt.Errorf("p2p: PeerLink.SendData before KeyExchange")
	}
	ciphertext, iv, err := encryptCBC(pl.aesKey, val)
	if err != nil {
		return err
	}
	tag := pl.tag(ciphertext, iv)

	envelope := make([]byte, 0, len(iv)+len(tag)+len(ciphertext))
	envelope = append(envelope, iv...)
	envelope = append(envelope, tag...)
	envelope = append(envelope, ciphertext...)

	return pl.conn.SendData(envelope)
}

// ReceiveData receives an envelope, verifies its HMAC tag in constant
// time, and returns the decrypted payload. A tag mismatch returns
// ErrMacFail without exposing any plaintext.
func (pl *PeerLink) ReceiveData() ([]byte, error) {
	if pl.aesKey == nil {
		return nil, fmt.Errorf("p2p: PeerLink.ReceiveData before KeyExchange")
	}
	envelope, err := pl.conn.ReceiveData()
	if err != nil {
		return nil, wrapDisconnect(err)
	}
	block, err := aes.NewCipher(pl.aesKey)
	if err != nil {
		return nil, err
	}
	ivSize := block.BlockSize()
	if len(envelope) < ivSize+sha256.Size {
		return nil, fmt.Errorf("p2p: truncated envelope")
	}
	iv := envelope[:ivSize]
	tag := envelope[ivSize : ivSize+sha256.Size]
	ciphertext := envelope[ivSize+sha256.Size:]

	want := pl.tag(ciphertext, iv)
	if !hmac.Equal(tag, want) {
		return nil, ErrMacFail
	}

	return decryptCBC(pl.aesKey, iv, ciphertext)
}

func (pl *PeerLink) tag(ciphertext, iv []byte) []byte {
	m := hmac.New(sha256.New, pl.hmacKey)
	m.Write(ciphertext)
	m.Write(iv)
	return m.Sum(nil)
}

// SendUint32 sends val as an authenticated 4-byte big-endian integer.
func (pl *PeerLink) SendUint32(val int) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(val))
	return pl.SendData(buf[:])
}

// ReceiveUint32 receives an authenticated 4-byte big-endian integer.
func (pl *PeerLink) ReceiveUint32() (int, error) {
	data, err := pl.ReceiveData()
	if err != nil {
		return 0, err
	}
	if len(data) != 4 {
		return 0, fmt.Errorf("p2p: invalid uint32 payload length %d", len(data))
	}
	return int(binary.BigEndian.Uint32(data)), nil
}

// Flush flushes any buffered output on the underlying connection.
func (pl *PeerLink) Flush() error {
	return pl.conn.Flush()
}

// SendShare sends this party's initial secret share of one input
// wire to the peer.
func (pl *PeerLink) SendShare(bit byte) error {
	if err := pl.SendData([]byte{tagInitialShare, bit}); err != nil {
		return err
	}
	return pl.Flush()
}

// ReceiveShare receives one input wire's initial secret share from
// the peer.
func (pl *PeerLink) ReceiveShare() (byte, error) {
	data, err := pl.ReceiveData()
	if err != nil {
		return 0, err
	}
	if len(data) != 2 || data[0] != tagInitialShare {
		return 0, ErrProtocolViolation
	}
	return data[1], nil
}

// SendGossip sends this party's output share bits to the peer, as the
// final all-pairs gossip before output reconstruction.
func (pl *PeerLink) SendGossip(bits []byte) error {
	payload := make([]byte, 0, 1+len(bits))
	payload = append(payload, tagFinalGossip)
	payload = append(payload, bits...)
	if err := pl.SendData(payload); err != nil {
		return err
	}
	return pl.Flush()
}

// ReceiveGossip receives a peer's output share bits.
func (pl *PeerLink) ReceiveGossip() ([]byte, error) {
	data, err := pl.ReceiveData()
	if err != nil {
		return nil, err
	}
	if len(data) < 1 || data[0] != tagFinalGossip {
		return nil, ErrProtocolViolation
	}
	return data[1:], nil
}

func wrapDisconnect(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrDisconnected
	}
	return err
}

func encryptCBC(key, plaintext []byte) (ciphertext, iv []byte, err error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	padded := pkcs7Pad(plaintext, block.BlockSize())
	iv = make([]byte, block.BlockSize())
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, err
	}
	ciphertext = make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)
	return ciphertext, iv, nil
}

func decryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("p2p: invalid ciphertext length %d", len(ciphertext))
	}
	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)
	return pkcs7Unpad(plain)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("p2p: empty padded data")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) {
		return nil, fmt.Errorf("p2p: invalid padding")
	}
	return data[:len(data)-padLen], nil
}
