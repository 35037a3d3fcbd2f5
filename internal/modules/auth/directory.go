package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// UserRecord is the directory view of an account.
type UserRecord struct {
	UID    string
	Email  string
	Claims map[string]interface{}
}

// Directory manages accounts and their custom claims. Production wires the
// Firebase Admin implementation; tests and local mode use the in-memory one.
type Directory interface {
	// EnsureUser finds the account for email, creating it with password when
	// it does not exist. Returns the record and whether it was created.
	// Finding an existing account with a non-empty password resets the
	// password. A missing account with no password is an error.
	EnsureUser(ctx context.Context, email, password string) (UserRecord, bool, error)
	GetUser(ctx context.Context, uid string) (UserRecord, bool, error)
	SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error
}

type memoryDirectory struct {
	mu    sync.Mutex
	users map[string]*memoryUser
	next  int
}

type memoryUser struct {
	record       UserRecord
	passwordHash []byte
}

// NewMemoryDirectory returns an in-memory Directory. Passwords are stored
// bcrypt-hashed so local mode behaves like a real directory.
func NewMemoryDirectory() Directory {
	return &memoryDirectory{users: make(map[string]*memoryUser)}
}

func (d *memoryDirectory) EnsureUser(ctx context.Context, email, password string) (UserRecord, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	lowered := strings.ToLower(strings.TrimSpace(email))
	for _, user := range d.users {
		if strings.ToLower(user.record.Email) != lowered {
			continue
		}
		if password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return UserRecord{}, false, err
			}
			user.passwordHash = hash
		}
		return user.record, false, nil
	}
	if password == "" {
		return UserRecord{}, false, fmt.Errorf("user %s not found and no password supplied", lowered)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return UserRecord{}, false, err
	}
	d.next++
	record := UserRecord{
		UID:    fmt.Sprintf("uid_%d", d.next),
		Email:  lowered,
		Claims: map[string]interface{}{},
	}
	d.users[record.UID] = &memoryUser{record: record, passwordHash: hash}
	return record, true, nil
}

func (d *memoryDirectory) GetUser(ctx context.Context, uid string) (UserRecord, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[uid]
	if !ok {
		return UserRecord{}, false, nil
	}
	return user.record, true, nil
}

func (d *memoryDirectory) SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[uid]
	if !ok {
		// Mirrors the admin SDK: claims can be set for uids we have not seen
		// through EnsureUser (e.g. the owner who signed up directly).
		user = &memoryUser{record: UserRecord{UID: uid, Claims: map[string]interface{}{}}}
		d.users[uid] = user
	}
	copied := make(map[string]interface{}, len(claims))
	for key, value := range claims {
		copied[key] = value
	}
	user.record.Claims = copied
	return nil
}
