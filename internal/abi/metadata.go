// Package abi reads the contract interface descriptor (ink! metadata JSON)
// and encodes message calls against it.
package abi

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SelectorLen is the length of an ink! message selector
const SelectorLen = 4

// ErrMessageNotFound is returned when the descriptor has no such message
var ErrMessageNotFound = errors.New("message not found in contract metadata")

// Metadata is the parsed interface of a deployed contract
type Metadata struct {
	Name     string
	Version  string
	Messages []Message
}

// Message is one callable entry point of the contract
type Message struct {
	Name       string
	Selector   [SelectorLen]byte
	Mutates    bool
	Payable    bool
	Args       []Arg
	ReturnType string
}

// Arg describes one message argument
type Arg struct {
	Name string
	Type string
}

type rawMetadata struct {
	Contract struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"contract"`
	Spec *rawSpec `json:"spec"`
}

type rawSpec struct {
	Messages []rawMessage `json:"messages"`
}

type rawMessage struct {
	Name       json.RawMessage `json:"name"`
	Label      string          `json:"label"`
	Selector   string          `json:"selector"`
	Mutates    bool            `json:"mutates"`
	Payable    bool            `json:"payable"`
	Args       []rawArg        `json:"args"`
	ReturnType *rawTypeRef     `json:"returnType"`
}

type rawArg struct {
	Name  json.RawMessage `json:"name"`
	Label string          `json:"label"`
	Type  rawTypeRef      `json:"type"`
}

type rawTypeRef struct {
	DisplayName []string `json:"displayName"`
}

// versionedKeys are the wrappers used by newer metadata layouts
var versionedKeys = []string{"V5", "V4", "V3", "V2", "V1"}

// Parse parses an ink! metadata document.
// Both the flat layout and the versioned {"V3": {...}} layout are accepted.
func Parse(data []byte) (*Metadata, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contract metadata: %w", err)
	}

	var raw rawMetadata
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal contract metadata: %w", err)
	}

	if raw.Spec == nil {
		for _, key := range versionedKeys {
			inner, ok := top[key]
			if !ok {
				continue
			}
			var wrapped rawMetadata
			if err := json.Unmarshal(inner, &wrapped); err != nil {
				return nil, fmt.Errorf("failed to unmarshal %s metadata: %w", key, err)
			}
			raw.Spec = wrapped.Spec
			if raw.Contract.Name == "" {
				raw.Contract = wrapped.Contract
			}
			break
		}
	}
	if raw.Spec == nil {
		return nil, errors.New("contract metadata has no spec section")
	}

	md := &Metadata{
		Name:     raw.Contract.Name,
		Version:  raw.Contract.Version,
		Messages: make([]Message, 0, len(raw.Spec.Messages)),
	}
	for _, rm := range raw.Spec.Messages {
		msg, err := rm.toMessage()
		if err != nil {
			return nil, err
		}
		md.Messages = append(md.Messages, msg)
	}
	return md, nil
}

// Message returns the message with the given name
func (m *Metadata) Message(name string) (*Message, error) {
	for i := range m.Messages {
		if m.Messages[i].Name == name {
			return &m.Messages[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMessageNotFound, name)
}

func (rm rawMessage) toMessage() (Message, error) {
	name, err := label(rm.Name, rm.Label)
	if err != nil {
		return Message{}, err
	}

	selector, err := parseSelector(rm.Selector)
	if err != nil {
		return Message{}, fmt.Errorf("message %s: %w", name, err)
	}

	msg := Message{
		Name:     name,
		Selector: selector,
		Mutates:  rm.Mutates,
		Payable:  rm.Payable,
		Args:     make([]Arg, 0, len(rm.Args)),
	}
	if rm.ReturnType != nil {
		msg.ReturnType = strings.Join(rm.ReturnType.DisplayName, "::")
	}
	for _, ra := range rm.Args {
		argName, err := label(ra.Name, ra.Label)
		if err != nil {
			return Message{}, fmt.Errorf("message %s: %w", name, err)
		}
		msg.Args = append(msg.Args, Arg{
			Name: argName,
			Type: strings.Join(ra.Type.DisplayName, "::"),
		})
	}
	return msg, nil
}

// label reads a name that is either ["path", "name"], "name" or a separate label field
func label(name json.RawMessage, lbl string) (string, error) {
	if lbl != "" {
		return lbl, nil
	}
	if len(name) == 0 {
		return "", errors.New("metadata entry has no name")
	}

	var path []string
	if err := json.Unmarshal(name, &path); err == nil {
		if len(path) == 0 {
			return "", errors.New("metadata entry has empty name")
		}
		return path[len(path)-1], nil
	}

	var s string
	if err := json.Unmarshal(name, &s); err != nil {
		return "", fmt.Errorf("invalid metadata name %s: %w", string(name), err)
	}
	return s, nil
}

func parseSelector(s string) ([SelectorLen]byte, error) {
	var sel [SelectorLen]byte
	b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return sel, fmt.Errorf("invalid selector %q: %w", s, err)
	}
	if len(b) != SelectorLen {
		return sel, fmt.Errorf("invalid selector %q: expected %d bytes", s, SelectorLen)
	}
	copy(sel[:], b)
	return sel, nil
}
