package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "placement-portal"

// KeyringPersister stores sessions in the OS keychain/credential manager.
// The CLI keys sessions by backend base URL.
type KeyringPersister struct {
	service string
}

func NewKeyringPersister() *KeyringPersister {
	return &KeyringPersister{service: keyringService}
}

// keyringKey returns a unique entry name per backend
func keyringKey(key string) string {
	return fmt.Sprintf("session-%s", key)
}

func (k *KeyringPersister) Load(_ context.Context, key string) (*Record, error) {
	secret, err := keyring.Get(k.service, keyringKey(key))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var record Record
	if err := json.Unmarshal([]byte(secret), &record); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &record, nil
}

func (k *KeyringPersister) Save(_ context.Context, key string, record *Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := keyring.Set(k.service, keyringKey(key), string(data)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (k *KeyringPersister) Delete(_ context.Context, key string) error {
	if err := keyring.Delete(k.service, keyringKey(key)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
