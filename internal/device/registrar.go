// Package device manages the local device identity and its registration in
// the remote device directory.
package device

import (
	"context"
	"fmt"

	"mlnotify/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Preference keys shared with the store package.
const (
	keyDeviceID   = "device_id"
	keyDeviceName = "device_name"
	keyPushToken  = "push_token"
)

// Registrar keeps the device id, display name and push token in sync between
// the local preference store and the remote directory. Writes are
// write-through and skipped when the value is unchanged; a remote failure
// leaves the local copy untouched.
type Registrar struct {
	Prefs ports.Prefs
	Dir   ports.DeviceDirectory
}

// DeviceID returns the stored device id, generating and persisting one on
// first use.
func (r *Registrar) DeviceID(ctx context.Context) (string, error) {
	id, ok, err := r.Prefs.Setting(ctx, keyDeviceID)
	if err != nil {
		return "", err
	}
	if ok {
		return id, nil
	}

	id = uuid.NewString()
	log.Ctx(ctx).Debug().Msgf("created new device id: %s", id)
	if err := r.Prefs.SetSetting(ctx, keyDeviceID, id); err != nil {
		return "", err
	}
	return id, nil
}

// SetName publishes the user-chosen device display name.
func (r *Registrar) SetName(ctx context.Context, name string) error {
	saved, _, err := r.Prefs.Setting(ctx, keyDeviceName)
	if err != nil {
		return err
	}
	if saved == name {
		log.Ctx(ctx).Debug().Msg("device name is unchanged, skipping save")
		return nil
	}

	deviceID, err := r.DeviceID(ctx)
	if err != nil {
		return err
	}

	if err := r.Dir.SetDeviceFields(ctx, deviceID, map[string]string{"deviceName": name}); err != nil {
		return fmt.Errorf("sending device name to directory: %w", err)
	}

	return r.Prefs.SetSetting(ctx, keyDeviceName, name)
}

// RegisterToken publishes a freshly issued push token.
func (r *Registrar) RegisterToken(ctx context.Context, token string) error {
	saved, _, err := r.Prefs.Setting(ctx, keyPushToken)
	if err != nil {
		return err
	}
	if saved == token {
		log.Ctx(ctx).Debug().Msg("push token is unchanged, skipping save")
		return nil
	}

	deviceID, err := r.DeviceID(ctx)
	if err != nil {
		return err
	}

	if err := r.Dir.RegisterToken(ctx, token); err != nil {
		return fmt.Errorf("registering push token: %w", err)
	}
	if err := r.Dir.SetDeviceFields(ctx, deviceID, map[string]string{"deviceToken": token}); err != nil {
		return fmt.Errorf("sending push token to directory: %w", err)
	}

	return r.Prefs.SetSetting(ctx, keyPushToken, token)
}

// EnsureToken returns the device's push token, minting and registering one on
// first use.
func (r *Registrar) EnsureToken(ctx context.Context) (string, error) {
	token, ok, err := r.Prefs.Setting(ctx, keyPushToken)
	if err != nil {
		return "", err
	}
	if ok {
		// Re-register on every start so a rebuilt directory picks the
		// token up again. Registration is idempotent.
		if err := r.Dir.RegisterToken(ctx, token); err != nil {
			return "", fmt.Errorf("re-registering push token: %w", err)
		}
		return token, nil
	}

	token = uuid.NewString()
	if err := r.RegisterToken(ctx, token); err != nil {
		return "", err
	}
	return token, nil
}
