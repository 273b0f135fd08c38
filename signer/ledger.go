// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package signer

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/blinklabs-io/gonear/borsh"
	"github.com/blinklabs-io/gonear/crypto"
	"github.com/blinklabs-io/gonear/nep413"
	"github.com/blinklabs-io/gonear/transaction"
)

const (
	DefaultLedgerHDPath = "44'/397'/0'/0'/1'"

	ledgerCLA                uint8 = 0x80
	ledgerInsGetPublicKey    uint8 = 0x04
	ledgerInsSignTransaction uint8 = 0x02
	ledgerInsSignNEP413      uint8 = 0x07
	ledgerInsSignNEP366      uint8 = 0x08
	ledgerP1More             uint8 = 0x00
	ledgerP1Last             uint8 = 0x80
	ledgerP2Network          uint8 = 'W'
	ledgerChunkSize                = 250

	ledgerStatusOK             uint16 = 0x9000
	ledgerStatusBufferOverflow uint16 = 0x6990
)

var ErrLedgerBufferOverflow = errors.New("ledger buffer overflow: payload is too large to sign on the device")

// LedgerStatusError is returned when the device answers with a failure status word
type LedgerStatusError struct {
	Status uint16
}

func (e *LedgerStatusError) Error() string {
	return fmt.Sprintf("ledger returned status 0x%04x", e.Status)
}

// Exchanger sends one APDU to a device and returns its response, status word included
type Exchanger interface {
	Exchange(ctx context.Context, apdu []byte) ([]byte, error)
}

// LedgerBackend signs on a hardware device. The secret key never leaves the
// device, so every signature is produced by sending the payload over APDUs
type LedgerBackend struct {
	exchanger Exchanger
	path      []byte
	mutex     sync.Mutex
	publicKey *crypto.PublicKey
}

// NewLedgerBackend returns a backend for the key at hdPath, such as
// "44'/397'/0'/0'/1'". An empty hdPath uses DefaultLedgerHDPath
func NewLedgerBackend(exchanger Exchanger, hdPath string) (*LedgerBackend, error) {
	if hdPath == "" {
		hdPath = DefaultLedgerHDPath
	}
	if !strings.HasPrefix(hdPath, "m/") {
		hdPath = "m/" + hdPath
	}
	indexes, err := ParseHDPath(hdPath)
	if err != nil {
		return nil, err
	}
	path := make([]byte, 0, 4*len(indexes))
	for _, idx := range indexes {
		path = binary.BigEndian.AppendUint32(path, idx)
	}
	return &LedgerBackend{
		exchanger: exchanger,
		path:      path,
	}, nil
}

func (l *LedgerBackend) exchange(ctx context.Context, ins uint8, p1 uint8, data []byte) ([]byte, error) {
	apdu := make([]byte, 0, 5+len(data))
	apdu = append(apdu, ledgerCLA, ins, p1, ledgerP2Network, uint8(len(data)))
	apdu = append(apdu, data...)
	resp, err := l.exchanger.Exchange(ctx, apdu)
	if err != nil {
		return nil, err
	}
	if len(resp) < 2 {
		return nil, fmt.Errorf("ledger response too short: %d bytes", len(resp))
	}
	status := binary.BigEndian.Uint16(resp[len(resp)-2:])
	switch status {
	case ledgerStatusOK:
		return resp[:len(resp)-2], nil
	case ledgerStatusBufferOverflow:
		return nil, ErrLedgerBufferOverflow
	}
	return nil, &LedgerStatusError{Status: status}
}

// PublicKey asks the device for the key once and caches it
func (l *LedgerBackend) PublicKey(ctx context.Context) (crypto.PublicKey, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.publicKey != nil {
		return *l.publicKey, nil
	}
	resp, err := l.exchange(ctx, ledgerInsGetPublicKey, ledgerP1More, l.path)
	if err != nil {
		return crypto.PublicKey{}, fmt.Errorf("get ledger public key: %w", err)
	}
	key, err := crypto.NewPublicKey(crypto.KeyTypeED25519, resp)
	if err != nil {
		return crypto.PublicKey{}, err
	}
	l.publicKey = &key
	return key, nil
}

// sign streams the path followed by payload to the device in chunks
func (l *LedgerBackend) sign(ctx context.Context, ins uint8, payload []byte) (crypto.Signature, error) {
	data := make([]byte, 0, len(l.path)+len(payload))
	data = append(data, l.path...)
	data = append(data, payload...)
	var resp []byte
	for offset := 0; offset < len(data); offset += ledgerChunkSize {
		end := min(offset+ledgerChunkSize, len(data))
		p1 := ledgerP1More
		if end == len(data) {
			p1 = ledgerP1Last
		}
		var err error
		resp, err = l.exchange(ctx, ins, p1, data[offset:end])
		if err != nil {
			return crypto.Signature{}, fmt.Errorf("ledger signing: %w", err)
		}
	}
	return crypto.NewSignature(crypto.KeyTypeED25519, resp)
}

func (l *LedgerBackend) SignTransaction(ctx context.Context, tx transaction.Transaction) (transaction.SignedTransaction, error) {
	sig, err := l.sign(ctx, ledgerInsSignTransaction, borsh.Encode(tx))
	if err != nil {
		return transaction.SignedTransaction{}, err
	}
	return transaction.NewSignedTransaction(tx, sig), nil
}

func (l *LedgerBackend) SignDelegateAction(ctx context.Context, d transaction.DelegateAction) (transaction.SignedDelegateAction, error) {
	sig, err := l.sign(ctx, ledgerInsSignNEP366, borsh.Encode(d))
	if err != nil {
		return transaction.SignedDelegateAction{}, err
	}
	return transaction.SignedDelegateAction{DelegateAction: d, Signature: sig}, nil
}

func (l *LedgerBackend) SignMessage(ctx context.Context, _ string, payload nep413.Payload) (crypto.Signature, error) {
	return l.sign(ctx, ledgerInsSignNEP413, borsh.Encode(payload))
}
