// Package credential stores the optional "remember me" login autofill
// in the system keyring, keeping saved credentials out of the plain
// config and data files.
package credential

import (
	"encoding/json"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "taskmaster"

// rememberKey is the keyring entry holding the saved login.
const rememberKey = "remembered-login"

// Login is a saved username/password pair used to prefill the login form.
type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/taskmaster/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("taskmaster-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// RememberedLogin retrieves the saved login from the system keyring.
func RememberedLogin() (Login, error) {
	ring, err := openKeyring()
	if err != nil {
		return Login{}, err
	}

	item, err := ring.Get(rememberKey)
	if err != nil {
		return Login{}, fmt.Errorf("getting remembered login: %w", err)
	}

	var l Login
	if err := json.Unmarshal(item.Data, &l); err != nil {
		return Login{}, fmt.Errorf("parsing remembered login: %w", err)
	}
	return l, nil
}

// Remember stores the login in the system keyring.
func Remember(l Login) error {
	data, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encoding remembered login: %w", err)
	}

	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  rememberKey,
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("storing remembered login: %w", err)
	}

	return nil
}

// Forget removes the saved login from the system keyring.
func Forget() error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(rememberKey)
	if err != nil {
		return fmt.Errorf("removing remembered login: %w", err)
	}

	return nil
}
