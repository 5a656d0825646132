package cli

import (
	"strings"

	"github.com/aidanlsb/magpie/internal/base"
	"github.com/aidanlsb/magpie/internal/config"
	"github.com/aidanlsb/magpie/internal/engine"
	"github.com/aidanlsb/magpie/internal/index"
	"github.com/aidanlsb/magpie/internal/vault"
)

// openVault opens the metadata index and the vault store over it.
// The caller owns the index and must Close it.
func openVault(vaultPath string) (*vault.Vault, *index.Index, error) {
	idx, err := index.Open(vaultPath)
	if err != nil {
		return nil, nil, err
	}
	v, err := vault.Open(vaultPath, idx)
	if err != nil {
		idx.Close()
		return nil, nil, err
	}
	return v, idx, nil
}

// loadVaultConfigSafe loads magpie.yaml, treating absence as defaults.
func loadVaultConfigSafe(vaultPath string) (*config.VaultConfig, error) {
	vaultCfg, err := config.LoadVaultConfig(vaultPath)
	if err != nil {
		return nil, err
	}
	if vaultCfg == nil {
		vaultCfg = config.DefaultVaultConfig()
	}
	return vaultCfg, nil
}

// newRunner builds a query runner configured from the vault config.
func newRunner(v *vault.Vault, vaultCfg *config.VaultConfig) *engine.Runner {
	r := engine.New(v, nil)
	r.CoerceDateKeys = vaultCfg.IsCoerceDateKeysEnabled()
	return r
}

// cliWarnings converts engine warnings into response warnings.
func cliWarnings(ws []engine.Warning) []Warning {
	if len(ws) == 0 {
		return nil
	}
	out := make([]Warning, 0, len(ws))
	for _, w := range ws {
		code := WarnEvaluation
		if strings.Contains(w.Message, "read failed") {
			code = WarnNoteSkipped
		}
		out = append(out, Warning{Code: code, Message: w.Message, Path: w.Path})
	}
	return out
}

// isNotFoundErr reports whether a base load failure is a missing file as
// opposed to an invalid one.
func isNotFoundErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "base not found")
}

// baseErrorCode maps a base load failure to an error code.
func baseErrorCode(err error) string {
	if isNotFoundErr(err) {
		return ErrBaseNotFound
	}
	return ErrBaseInvalid
}

// loadBase loads a base by name from the resolved vault.
func loadBase(name string) (*base.Base, error) {
	return base.Load(getVaultPath(), name)
}
