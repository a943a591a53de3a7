package httpy

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/acme"
	"golang.org/x/crypto/acme/autocert"
)

const (
	selfSignedCert = "localhost.crt"
	selfSignedKey  = "localhost.key"
	selfSignedTTL  = 10 * 365 * 24 * time.Hour
)

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	return "/"
}

// cacheDir is where autocert keeps obtained certificates. Self-signed ones are stored
// there as well.
func cacheDir() string {
	const base = "httpy-autocert"
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches", base)
	case "windows":
		for _, ev := range []string{"APPDATA", "CSIDL_APPDATA", "TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return filepath.Join(v, base)
			}
		}
		return filepath.Join(homeDir(), base)
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, base)
	}
	return filepath.Join(homeDir(), ".cache", base)
}

// autoTLSConfig obtains certificates from Let's Encrypt for the domains. If none are
// passed, any requested host is allowed.
func autoTLSConfig(logger zerolog.Logger, domains ...string) *tls.Config {
	m := &autocert.Manager{
		Prompt: autocert.AcceptTOS,
	}

	if len(domains) > 0 {
		m.HostPolicy = autocert.HostWhitelist(domains...)
	}

	cache := cacheDir()
	if err := os.MkdirAll(cache, 0o700); err != nil {
		logger.Warn().Err(err).Str("dir", cache).Msg("auto HTTPS: not using a cache")
	} else {
		m.Cache = autocert.DirCache(cache)
	}

	cfg := m.TLSConfig()
	// only HTTP/1.1 is spoken, however TLS-ALPN challenges must still be answered
	cfg.NextProtos = []string{"http/1.1", acme.ALPNProto}

	return cfg
}

// generateSelfSignedCert creates a certificate for localhost in the directory, unless
// it's already there.
func generateSelfSignedCert(dir string) (cert, key string, err error) {
	cert, key = filepath.Join(dir, selfSignedCert), filepath.Join(dir, selfSignedKey)
	if fileExists(cert) && fileExists(key) {
		return cert, key, nil
	}

	if err = os.MkdirAll(dir, 0o700); err != nil {
		return "", "", err
	}

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return "", "", err
	}

	notBefore := time.Now()
	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"httpy"}, CommonName: "localhost"},
		DNSNames:              []string{"localhost"},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(selfSignedTTL),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return "", "", err
	}

	privBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", "", err
	}

	if err = writePEM(cert, "CERTIFICATE", certDER, 0o644); err != nil {
		return "", "", err
	}

	return cert, key, writePEM(key, "PRIVATE KEY", privBytes, 0o600)
}

func writePEM(filename, kind string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, pem.EncodeToMemory(&pem.Block{Type: kind, Bytes: data}), perm)
}

func fileExists(filename string) bool {
	stat, err := os.Stat(filename)

	return err == nil && !stat.IsDir()
}
