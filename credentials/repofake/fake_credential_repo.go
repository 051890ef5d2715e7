package credentialrepofake

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-kyc-client/credentials"
)

var _ credentials.Repo = (*FakeCredentialRepo)(nil)

type FakeCredentialRepo struct {
	values map[credentials.Key]string
	lock   sync.RWMutex
}

func NewFakeCredentialRepo() *FakeCredentialRepo {
	return &FakeCredentialRepo{
		values: make(map[credentials.Key]string),
	}
}

func (cr *FakeCredentialRepo) Get(_ context.Context, key credentials.Key) (string, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	v, ok := cr.values[key]
	if !ok {
		return "", credentials.ErrNotFound
	}
	return v, nil
}

func (cr *FakeCredentialRepo) Set(_ context.Context, key credentials.Key, value string) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	cr.values[key] = value
	return nil
}

func (cr *FakeCredentialRepo) Delete(_ context.Context, keys ...credentials.Key) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	for _, k := range keys {
		delete(cr.values, k)
	}
	return nil
}

// Keys returns the keys currently holding a value.
func (cr *FakeCredentialRepo) Keys() []credentials.Key {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	keys := make([]credentials.Key, 0, len(cr.values))
	for _, k := range credentials.AllKeys {
		if _, ok := cr.values[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}
