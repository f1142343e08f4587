package app

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/aussiebroadwan/blogadmin/pkg/cryptox"
	"github.com/aussiebroadwan/blogadmin/pkg/jwtx"
)

// InitKeys builds the KeyManager from the configured algorithms.
//
// HS512 uses JWT_SECRET when set, otherwise ephemeral secrets. EdDSA uses
// the key in JWT_EDDSA_KEY_FILE (created on first start) when set,
// otherwise ephemeral keys. Tokens signed with ephemeral keys become
// invalid when the service restarts.
func InitKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{
		Algorithms: cfg.Algorithms,
		Issuer:     cfg.Issuer,
		NumKeys:    cfg.NumKeys,
	}

	if cfg.JWTSecret != "" {
		opts.HMACSecret = []byte(cfg.JWTSecret)
	}

	if cfg.EdDSAKeyFile != "" && slices.Contains(cfg.Algorithms, jwtx.AlgorithmEdDSA) {
		key, err := cryptox.LoadOrGenerateEd25519Key(cfg.EdDSAKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load EdDSA key: %w", err)
		}
		opts.EdDSAKey = key
	}

	km, err := jwtx.NewKeyManager(opts)
	if err != nil {
		return nil, err
	}

	logger.Info("signing keys ready",
		"algorithms", cfg.Algorithms,
		"num_keys", km.NumSigners(),
		"hs512_pinned", cfg.JWTSecret != "",
		"eddsa_pinned", opts.EdDSAKey != nil,
	)
	if cfg.JWTSecret == "" && slices.Contains(cfg.Algorithms, jwtx.AlgorithmHS512) {
		logger.Warn("JWT_SECRET not set, HS512 tokens will not survive a restart")
	}

	return km, nil
}
