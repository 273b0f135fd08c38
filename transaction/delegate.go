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

package transaction

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blinklabs-io/gonear/borsh"
	"github.com/blinklabs-io/gonear/crypto"
)

// DefaultMetaTransactionValidFor is the number of blocks a delegate action stays
// valid for when no window is given
const DefaultMetaTransactionValidFor uint64 = 1000

var ErrDelegateActionNotSupported = errors.New("delegate actions cannot contain nested delegate actions")

// DelegateAction is a set of actions signed by the sender and submitted to the
// network by a relayer that pays for gas
type DelegateAction struct {
	SenderID       string
	ReceiverID     string
	Actions        []Action
	Nonce          uint64
	MaxBlockHeight uint64
	PublicKey      crypto.PublicKey
}

// NewDelegateAction builds a delegate action. None of the actions may be a
// delegate action itself
func NewDelegateAction(
	senderID string,
	receiverID string,
	actions []Action,
	nonce uint64,
	maxBlockHeight uint64,
	publicKey crypto.PublicKey,
) (DelegateAction, error) {
	if err := checkNonDelegate(actions); err != nil {
		return DelegateAction{}, err
	}
	return DelegateAction{
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Actions:        actions,
		Nonce:          nonce,
		MaxBlockHeight: maxBlockHeight,
		PublicKey:      publicKey,
	}, nil
}

func checkNonDelegate(actions []Action) error {
	for idx, a := range actions {
		if a.Type() == ActionTypeDelegate {
			return fmt.Errorf("%w: action %d", ErrDelegateActionNotSupported, idx)
		}
	}
	return nil
}

func (d DelegateAction) MarshalBorsh(w *borsh.Writer) {
	w.WriteString(d.SenderID)
	w.WriteString(d.ReceiverID)
	marshalActions(w, d.Actions)
	w.WriteU64(d.Nonce)
	w.WriteU64(d.MaxBlockHeight)
	d.PublicKey.MarshalBorsh(w)
}

func (d *DelegateAction) UnmarshalBorsh(r *borsh.Reader) {
	d.SenderID = r.ReadString()
	d.ReceiverID = r.ReadString()
	d.Actions = unmarshalActions(r)
	if r.Err() == nil {
		if err := checkNonDelegate(d.Actions); err != nil {
			r.SetErr(err)
			return
		}
	}
	d.Nonce = r.ReadU64()
	d.MaxBlockHeight = r.ReadU64()
	r.Read(&d.PublicKey)
}

// Hash returns the domain separated hash that gets signed
func (d DelegateAction) Hash() crypto.CryptoHash {
	return SignableMessageHash(DiscriminantDelegateAction, d)
}

func (d DelegateAction) Sign(key crypto.SecretKey) (SignedDelegateAction, error) {
	hash := d.Hash()
	sig, err := key.Sign(hash[:])
	if err != nil {
		return SignedDelegateAction{}, fmt.Errorf("sign delegate action: %w", err)
	}
	return SignedDelegateAction{DelegateAction: d, Signature: sig}, nil
}

// SignedDelegateAction is a signed delegate action. It is also the payload of
// the Delegate action a relayer wraps into its own transaction
type SignedDelegateAction struct {
	DelegateAction DelegateAction
	Signature      crypto.Signature
}

func (SignedDelegateAction) Type() ActionType { return ActionTypeDelegate }

func (s SignedDelegateAction) marshalBody(w *borsh.Writer) {
	s.MarshalBorsh(w)
}

func (s *SignedDelegateAction) unmarshalBody(r *borsh.Reader) {
	s.UnmarshalBorsh(r)
}

func (s SignedDelegateAction) MarshalBorsh(w *borsh.Writer) {
	s.DelegateAction.MarshalBorsh(w)
	s.Signature.MarshalBorsh(w)
}

func (s *SignedDelegateAction) UnmarshalBorsh(r *borsh.Reader) {
	r.Read(&s.DelegateAction)
	r.Read(&s.Signature)
}

// Verify checks the signature against the delegate action's public key
func (s SignedDelegateAction) Verify() bool {
	hash := s.DelegateAction.Hash()
	return s.Signature.Verify(hash[:], s.DelegateAction.PublicKey)
}

func (s SignedDelegateAction) Base64() string {
	return base64.StdEncoding.EncodeToString(borsh.Encode(s))
}

func SignedDelegateActionFromBase64(s string) (SignedDelegateAction, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return SignedDelegateAction{}, fmt.Errorf("decode signed delegate action: %w", err)
	}
	var ret SignedDelegateAction
	if err := borsh.Decode(data, &ret); err != nil {
		return SignedDelegateAction{}, err
	}
	return ret, nil
}

// RelayerRequest is the JSON body posted to a meta transaction relayer
type RelayerRequest struct {
	SignedDelegateAction string `json:"signed_delegate_action"`
}

// RelayerPayload returns the JSON body for submitting s to a relayer
func (s SignedDelegateAction) RelayerPayload() ([]byte, error) {
	return json.Marshal(RelayerRequest{SignedDelegateAction: s.Base64()})
}
