package auth

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".daily-panda"
	credentialFile = "credentials.gpg"
	passphraseFile = "passphrase"
)

// gpgBinary is the decryption tool; replaced in tests.
var gpgBinary = "gpg"

// GetAPIKey returns the Gemini API key used for both text and image
// generation. Sources, in order:
//  1. GEMINI_API_KEY environment variable (set from SSM in Lambda)
//  2. GPG-encrypted file at ~/.daily-panda/credentials.gpg
func GetAPIKey() (string, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		log.Debug().Msg("Using API key from environment variable")
		return key, nil
	}

	key, err := getFromGPG()
	if err == nil && key != "" {
		log.Debug().Msg("Using API key from GPG encrypted file")
		return key, nil
	}
	if err == nil {
		err = errors.New("decrypted credentials are empty")
	}

	log.Error().Err(err).Msg("Failed to retrieve API key")
	return "", fmt.Errorf("API key not found: set GEMINI_API_KEY or encrypt it to ~/%s/%s: %w", credentialDir, credentialFile, err)
}

// getFromGPG decrypts ~/.daily-panda/credentials.gpg. A passphrase file in
// the same directory lets scheduled runs decrypt without a pinentry prompt.
func getFromGPG() (string, error) {
	dir, err := credentialHome()
	if err != nil {
		return "", err
	}
	credPath := filepath.Join(dir, credentialFile)
	if _, err := os.Stat(credPath); err != nil {
		return "", fmt.Errorf("GPG credentials file not found at %s: %w", credPath, err)
	}

	args := append([]string{"--decrypt", "--quiet"}, passphraseArgs(filepath.Join(dir, passphraseFile))...)
	args = append(args, credPath)

	log.Debug().Str("file", credPath).Msg("Decrypting GPG credentials")
	output, err := exec.Command(gpgBinary, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("GPG decryption failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("GPG decryption failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// passphraseArgs returns the loopback pinentry flags when path is an
// owner-only file, and nothing otherwise.
func passphraseArgs(path string) []string {
	fi, err := os.Stat(path)
	if err != nil {
		return nil
	}
	if mode := fi.Mode().Perm(); mode&0077 != 0 {
		log.Warn().
			Str("passphrase_file", path).
			Str("permissions", fmt.Sprintf("%04o", mode)).
			Msg("Passphrase file is readable by others (want 0600), ignoring it")
		return nil
	}
	return []string{"--pinentry-mode", "loopback", "--passphrase-file", path}
}

// credentialHome is ~/.daily-panda.
func credentialHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, credentialDir), nil
}
