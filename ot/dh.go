//
// dh.go
//
// Copyright (c) 2023 Markku Rossi
//
// All rights reserved.

package ot

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"

	"github.com/markkurossi/gmw/ot/mpint"
)

// ErrOutOfRange is returned when a peer sends a Diffie-Hellman public
// value outside of the group's valid range. It always aborts the
// transfer; there is no way to recover a single corrupted OT.
var ErrOutOfRange = fmt.Errorf("ot: public value out of range")

// DH implements 1-of-n oblivious transfer using Diffie-Hellman key
// agreement over a fixed prime-order group. Every message the sender
// holds is independently encrypted under a key the receiver can only
// derive for the single index it chose; the sender never learns that
// index, and the receiver never learns any of the other messages.
//
// A DH transfers its public values and ciphertexts over an IO that
// the caller supplies; in the GMW engine that IO is the already
// authenticated PeerLink channel to the other party, so the messages
// this type puts on the wire travel inside that channel's encrypted,
// MAC-protected envelope.
type DH struct {
	group *Group
	io    IO
}

// NewDH creates an oblivious transfer endpoint bound to the given
// group and channel.
func NewDH(group *Group, io IO) *DH {
	return &DH{
		group: group,
		io:    io,
	}
}

// Send runs the sender side of a 1-of-n oblivious transfer, offering
// the receiver exactly one of messages without learning which one it
// took.
func (d *DH) Send(messages [][]byte) error {
	g := d.group

	a, err := g.RandomExponent(rand.Reader)
	if err != nil {
		return err
	}
	A := mpint.Exp(g.G, a, g.P)

	if err := d.io.SendData(A.Bytes()); err != nil {
		return err
	}
	if err := d.io.Flush(); err != nil {
		return err
	}

	bData, err := d.io.ReceiveData()
	if err != nil {
		return err
	}
	B := mpint.FromBytes(bData)
	if !g.InRange(B) {
		return ErrOutOfRange
	}

	if err := d.io.SendUint32(len(messages)); err != nil {
		return err
	}
	for i, m := range messages {
		// k_i = (B * A^-i)^a mod P
		Ai := mpint.Exp(A, big.NewInt(int64(i)), g.P)
		AiInv := new(big.Int).ModInverse(Ai, g.P)
		if AiInv == nil {
			return fmt.Errorf("ot: A has no inverse mod P")
		}
		base := new(big.Int).Mod(new(big.Int).Mul(B, AiInv), g.P)
		k := mpint.Exp(base, a, g.P)

		key := deriveKey(k, i)
		ciphertext, iv, err := aesEncrypt(key, m)
		if err != nil {
			return err
		}
		if err := d.io.SendData(iv); err != nil {
			return err
		}
		if err := d.io.SendData(ciphertext); err != nil {
			return err
		}
	}
	return d.io.Flush()
}

// Receive runs the receiver side of a 1-of-n oblivious transfer,
// obtaining the message at index choice out of n total messages. The
// caller must know n in advance (it is the arity of the GMW gate
// being evaluated); this is not secret and does not need to travel
// over the wire, though Send also transmits it as a consistency
// check.
func (d *DH) Receive(choice, n int) ([]byte, error) {
	g := d.group

	aData, err := d.io.ReceiveData()
	if err != nil {
		return nil, err
	}
	A := mpint.FromBytes(aData)
	if !g.InRange(A) {
		return nil, ErrOutOfRange
	}

	b, err := g.RandomExponent(rand.Reader)
	if err != nil {
		return nil, err
	}
	// B = g^b * A^choice mod P
	Ac := mpint.Exp(A, big.NewInt(int64(choice)), g.P)
	Gb := mpint.Exp(g.G, b, g.P)
	B := new(big.Int).Mod(new(big.Int).Mul(Gb, Ac), g.P)

	if err := d.io.SendData(B.Bytes()); err != nil {
		return nil, err
	}
	if err := d.io.Flush(); err != nil {
		return nil, err
	}

	count, err := d.io.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	if count != n {
		return nil, fmt.Errorf("ot: expected %d messages, got %d", n, count)
	}
	if choice < 0 || choice >= count {
		return nil, fmt.Errorf("ot: choice %d out of range [0,%d)", choice, count)
	}

	// k_c = A^b mod P
	k := mpint.Exp(A, b, g.P)
	key := deriveKey(k, choice)

	var result []byte
	for i := 0; i < count; i++ {
		iv, err := d.io.ReceiveData()
		if err != nil {
			return nil, err
		}
		ciphertext, err := d.io.ReceiveData()
		if err != nil {
			return nil, err
		}
		if i == choice {
			result, err = aesDecrypt(key, iv, ciphertext)
			if err != nil {
				return nil, err
			}
		}
	}
	if result == nil {
		return nil, fmt.Errorf("ot: choice %d never seen", choice)
	}
	return result, nil
}

// deriveKey expands a Diffie-Hellman shared value into a 128-bit AES
// key, binding the derivation to the message index so that the n
// per-message keys are independent even though they come from related
// group elements.
func deriveKey(shared *big.Int, index int) []byte {
	info := []byte(fmt.Sprintf("mpc/ot/dh/%d", index))
	r := hkdf.New(sha256.New, shared.Bytes(), nil, info)
	key := make([]byte, 16)
	if _, err := io.ReadFull(r, key); err != nil {
		panic(err)
	}
	return key
}

func aesEncrypt(key, plaintext []byte) (ciphertext, iv []byte, err error) {
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

func aesDecrypt(key, iv, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("ot: invalid ciphertext length %d", len(ciphertext))
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
		return nil, fmt.Errorf("ot: empty padded data")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) {
		return nil, fmt.Errorf("ot: invalid padding")
	}
	return data[:len(data)-padLen], nil
}
