package service

import (
	"errors"
	"fmt"

	"github.com/lifedash/portfolio-engine/internal/apperrors"
	"github.com/lifedash/portfolio-engine/internal/repository"
	"github.com/lifedash/portfolio-engine/internal/secret"
)

// settingMarketToken is the global_setting key holding the encrypted upstream
// API token.
const settingMarketToken = "market_api_token"

// TokenClient is the part of the upstream client that accepts a rotated
// API token. *finnhub.Client satisfies this interface.
type TokenClient interface {
	SetToken(token string)
}

// DeveloperService backs the developer endpoints: storing the upstream API
// token encrypted at rest and rotating it into the running client.
type DeveloperService struct {
	settings *repository.SettingRepository
	codec    *secret.Codec
	client   TokenClient
}

// NewDeveloperService creates a new DeveloperService. codec may be nil when
// no encryption key is configured; storing a token then fails rather than
// writing the secret in plaintext.
func NewDeveloperService(settings *repository.SettingRepository, codec *secret.Codec, client TokenClient) *DeveloperService {
	return &DeveloperService{
		settings: settings,
		codec:    codec,
		client:   client,
	}
}

// StoreMarketToken encrypts and persists the upstream API token and rotates
// it into the running client immediately.
func (s *DeveloperService) StoreMarketToken(token string) error {
	if s.codec == nil {
		return fmt.Errorf("cannot store API token: no encryption key configured")
	}

	encrypted, err := s.codec.Encrypt(token)
	if err != nil {
		return err
	}
	if err := s.settings.Set(settingMarketToken, encrypted); err != nil {
		return err
	}

	s.client.SetToken(token)
	return nil
}

// LoadMarketToken decrypts the stored token, if any, and pushes it into the
// client. Returns whether a token was loaded. Called once at startup.
func (s *DeveloperService) LoadMarketToken() (bool, error) {
	if s.codec == nil {
		return false, nil
	}

	encrypted, err := s.settings.Get(settingMarketToken)
	if errors.Is(err, apperrors.ErrSettingNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	token, err := s.codec.Decrypt(encrypted)
	if err != nil {
		return false, fmt.Errorf("stored API token is unreadable: %w", err)
	}

	s.client.SetToken(token)
	return true, nil
}

// HasMarketToken reports whether a token is stored, without revealing it.
func (s *DeveloperService) HasMarketToken() (bool, error) {
	_, err := s.settings.Get(settingMarketToken)
	if errors.Is(err, apperrors.ErrSettingNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
