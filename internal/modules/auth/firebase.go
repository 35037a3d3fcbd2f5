package auth

import (
	"context"
	"fmt"

	fbauth "firebase.google.com/go/v4/auth"
)

type firebaseVerifier struct{ client *fbauth.Client }

// NewFirebaseVerifier verifies Firebase ID tokens issued to the web client.
func NewFirebaseVerifier(client *fbauth.Client) Verifier {
	return &firebaseVerifier{client: client}
}

func (v *firebaseVerifier) Verify(ctx context.Context, token string) (Context, error) {
	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Context{}, fmt.Errorf("verify id token: %w", err)
	}
	return Context{UID: decoded.UID, Token: decoded.Claims}, nil
}

type firebaseDirectory struct{ client *fbauth.Client }

// NewFirebaseDirectory manages accounts through the Firebase Admin SDK.
func NewFirebaseDirectory(client *fbauth.Client) Directory {
	return &firebaseDirectory{client: client}
}

func (d *firebaseDirectory) EnsureUser(ctx context.Context, email, password string) (UserRecord, bool, error) {
	user, err := d.client.GetUserByEmail(ctx, email)
	if err == nil {
		if password != "" {
			update := (&fbauth.UserToUpdate{}).Password(password)
			if _, err := d.client.UpdateUser(ctx, user.UID, update); err != nil {
				return UserRecord{}, false, fmt.Errorf("update user password: %w", err)
			}
		}
		return toRecord(user), false, nil
	}
	if !fbauth.IsUserNotFound(err) {
		return UserRecord{}, false, fmt.Errorf("lookup user by email: %w", err)
	}
	if password == "" {
		return UserRecord{}, false, fmt.Errorf("user %s not found and no password supplied", email)
	}
	create := (&fbauth.UserToCreate{}).Email(email).Password(password).EmailVerified(false)
	created, err := d.client.CreateUser(ctx, create)
	if err != nil {
		return UserRecord{}, false, fmt.Errorf("create user: %w", err)
	}
	return toRecord(created), true, nil
}

func (d *firebaseDirectory) GetUser(ctx context.Context, uid string) (UserRecord, bool, error) {
	user, err := d.client.GetUser(ctx, uid)
	if err != nil {
		if fbauth.IsUserNotFound(err) {
			return UserRecord{}, false, nil
		}
		return UserRecord{}, false, err
	}
	return toRecord(user), true, nil
}

func (d *firebaseDirectory) SetCustomClaims(ctx context.Context, uid string, claims map[string]interface{}) error {
	return d.client.SetCustomUserClaims(ctx, uid, claims)
}

func toRecord(user *fbauth.UserRecord) UserRecord {
	return UserRecord{UID: user.UID, Email: user.Email, Claims: user.CustomClaims}
}
