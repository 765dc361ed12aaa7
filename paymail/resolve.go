// Package paymail turns a paymail handle (alias@domain) into a P2PKH
// address that can receive settlement transfers.
package paymail

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"go.uber.org/zap"
)

// MaxResponseSize bounds the body read from any paymail endpoint.
const MaxResponseSize = 1 << 20

// HTTPClient defines the interface for HTTP requests.
// This allows tests to mock HTTP calls.
type HTTPClient interface {
	Get(url string) (*http.Response, error)
}

// DefaultHTTPClient is the production HTTP client with a 30-second timeout.
var DefaultHTTPClient HTTPClient = &http.Client{Timeout: 30 * time.Second}

// Capabilities holds the capability URL templates a paymail host advertises.
type Capabilities struct {
	PKI           string
	PublicProfile string
}

// PKIResponse holds the response from a Paymail PKI endpoint.
type PKIResponse struct {
	BSVAlias string `json:"bsvalias"`
	Handle   string `json:"handle"`
	PubKey   string `json:"pubkey"` // hex-encoded compressed public key
}

type wellKnownResponse struct {
	BSVAlias     string         `json:"bsvalias"`
	Capabilities map[string]any `json:"capabilities"`
}

// Known capability keys.
const (
	capPKI           = "pki"
	capPKIFull       = "0c4339ef99c2"
	capPublicProfile = "f12f968c92d6"
)

// Resolver resolves paymail handles.
type Resolver struct {
	http    HTTPClient
	dns     DNSResolver
	mainnet bool
	log     *zap.Logger
}

// NewResolver creates a Resolver. Nil client or resolver select the
// defaults; mainnet selects the address version of derived addresses.
func NewResolver(client HTTPClient, resolver DNSResolver, mainnet bool, log *zap.Logger) *Resolver {
	if client == nil {
		client = DefaultHTTPClient
	}
	if resolver == nil {
		resolver = DefaultDNSResolver
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{http: client, dns: resolver, mainnet: mainnet, log: log}
}

// ResolveRecipient returns the address for recipient. Anything that is
// not a handle is returned unchanged.
func (r *Resolver) ResolveRecipient(recipient string) (string, error) {
	if !IsHandle(recipient) {
		return recipient, nil
	}
	alias, domain, err := ParseHandle(recipient)
	if err != nil {
		return "", err
	}

	host := domain + ":443"
	endpoints, err := ResolveEndpoints(domain, r.dns)
	if err != nil {
		r.log.Debug("no paymail SRV record, using domain", zap.String("domain", domain), zap.Error(err))
	} else {
		host = endpoints[0]
	}

	caps, err := r.DiscoverCapabilities(host)
	if err != nil {
		return "", err
	}
	pub, err := r.ResolvePKI(caps, alias, domain)
	if err != nil {
		return "", err
	}

	addr, err := script.NewAddressFromPublicKey(pub, r.mainnet)
	if err != nil {
		return "", fmt.Errorf("%w: address from pubkey: %w", ErrPKIResolution, err)
	}
	r.log.Info("resolved paymail", zap.String("handle", recipient), zap.String("address", addr.AddressString))
	return addr.AddressString, nil
}

// DiscoverCapabilities fetches https://{host}/.well-known/bsvalias. A
// trailing :443 is dropped from host.
func (r *Resolver) DiscoverCapabilities(host string) (*Capabilities, error) {
	if host == "" {
		return nil, fmt.Errorf("%w: empty host", ErrPaymailDiscovery)
	}
	if h, port, err := net.SplitHostPort(host); err == nil && port == "443" {
		host = h
	}

	u := "https://" + host + "/.well-known/bsvalias"
	var wk wellKnownResponse
	if err := r.getJSON(u, &wk); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPaymailDiscovery, err)
	}

	caps := &Capabilities{}
	for key, val := range wk.Capabilities {
		urlStr, ok := val.(string)
		if !ok {
			continue
		}
		switch key {
		case capPKI, capPKIFull:
			caps.PKI = urlStr
		case capPublicProfile:
			caps.PublicProfile = urlStr
		}
	}
	return caps, nil
}

// ResolvePKI fetches the identity public key of alias@domain.
func (r *Resolver) ResolvePKI(caps *Capabilities, alias, domain string) (*ec.PublicKey, error) {
	if caps == nil || caps.PKI == "" {
		return nil, fmt.Errorf("%w: no PKI capability for %s", ErrPKIResolution, domain)
	}

	pkiURL := strings.ReplaceAll(caps.PKI, "{alias}", url.PathEscape(alias))
	pkiURL = strings.ReplaceAll(pkiURL, "{domain.tld}", url.PathEscape(domain))

	var pki PKIResponse
	if err := r.getJSON(pkiURL, &pki); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPKIResolution, err)
	}
	if pki.PubKey == "" {
		return nil, fmt.Errorf("%w: empty public key in response", ErrPKIResolution)
	}

	raw, err := hex.DecodeString(pki.PubKey)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex public key: %w", ErrInvalidPubKey, err)
	}
	if len(raw) != 33 || (raw[0] != 0x02 && raw[0] != 0x03) {
		return nil, fmt.Errorf("%w: expected 33-byte compressed key", ErrInvalidPubKey)
	}
	pub, err := ec.PublicKeyFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPubKey, err)
	}
	return pub, nil
}

func (r *Resolver) getJSON(u string, v any) error {
	resp, err := r.http.Get(u)
	if err != nil {
		return fmt.Errorf("GET %s: %w", u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", u, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}
