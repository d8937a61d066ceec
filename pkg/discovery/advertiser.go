package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// Service constants for mDNS.
const (
	// ServiceType is the DNS-SD service type of the echo server.
	ServiceType = "_tlsecho._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// MaxInstanceNameLen is the DNS label limit.
	MaxInstanceNameLen = 63
)

// TXT record keys.
const (
	TXTKeyServerName = "sn"
	TXTKeyALPN       = "alpn"
	TXTKeyVersion    = "v"
)

// Discovery errors.
var (
	ErrInvalidPort     = errors.New("invalid port")
	ErrMissingRequired = errors.New("missing required TXT record")
)

// ServiceInfo describes an advertised echo server.
type ServiceInfo struct {
	// Instance is the DNS-SD instance name.
	Instance string

	// Port is the TCP port the server listens on.
	Port int

	// ServerName is the name in the server certificate.
	ServerName string

	// ALPN is the application protocol offered by the server.
	ALPN string
}

// Advertiser publishes and withdraws a service advertisement.
type Advertiser interface {
	// Advertise starts advertising info, replacing any earlier advertisement.
	Advertise(ctx context.Context, info *ServiceInfo) error

	// Stop withdraws the advertisement. Stop without Advertise is a no-op.
	Stop() error
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface restricts advertising to one interface. Empty means all.
	Interface string

	// TTL is the DNS record TTL (default: 120s).
	TTL time.Duration
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{TTL: 120 * time.Second}
}

// MDNSAdvertiser implements Advertiser using zeroconf.
type MDNSAdvertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewMDNSAdvertiser creates an mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) *MDNSAdvertiser {
	return &MDNSAdvertiser{config: config}
}

// Advertise registers the service with zeroconf.
func (a *MDNSAdvertiser) Advertise(ctx context.Context, info *ServiceInfo) error {
	if info.Port <= 0 || info.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, info.Port)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	server, err := zeroconf.Register(
		InstanceName(info),
		ServiceType,
		Domain,
		info.Port,
		TXTRecordsToStrings(EncodeTXT(info)),
		a.interfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}
	a.server = server
	return nil
}

// Stop shuts the zeroconf server down.
func (a *MDNSAdvertiser) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
	return nil
}

// interfaces returns nil to use every interface.
func (a *MDNSAdvertiser) interfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}

// InstanceName returns the instance label for info, defaulting to
// "tlsecho-<port>" and clipped to MaxInstanceNameLen.
func InstanceName(info *ServiceInfo) string {
	name := info.Instance
	if name == "" {
		name = "tlsecho-" + strconv.Itoa(info.Port)
	}
	if len(name) > MaxInstanceNameLen {
		name = name[:MaxInstanceNameLen]
	}
	return name
}

// TXTRecordMap is a map of TXT record key-value pairs.
type TXTRecordMap map[string]string

// EncodeTXT builds the TXT records for info.
func EncodeTXT(info *ServiceInfo) TXTRecordMap {
	txt := TXTRecordMap{
		TXTKeyVersion:    "1",
		TXTKeyServerName: info.ServerName,
	}
	if info.ALPN != "" {
		txt[TXTKeyALPN] = info.ALPN
	}
	return txt
}

// DecodeTXT parses TXT records produced by EncodeTXT.
func DecodeTXT(txt TXTRecordMap) (*ServiceInfo, error) {
	sn, ok := txt[TXTKeyServerName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingRequired, TXTKeyServerName)
	}
	return &ServiceInfo{
		ServerName: sn,
		ALPN:       txt[TXTKeyALPN],
	}, nil
}

// TXTRecordsToStrings converts a TXTRecordMap to sorted "key=value" strings.
func TXTRecordsToStrings(txt TXTRecordMap) []string {
	result := make([]string, 0, len(txt))
	for k, v := range txt {
		result = append(result, k+"="+v)
	}
	sort.Strings(result)
	return result
}

// StringsToTXTRecords parses "key=value" strings into a TXTRecordMap.
func StringsToTXTRecords(strs []string) TXTRecordMap {
	txt := make(TXTRecordMap)
	for _, s := range strs {
		k, v, _ := strings.Cut(s, "=")
		if k != "" {
			txt[k] = v
		}
	}
	return txt
}

var _ Advertiser = (*MDNSAdvertiser)(nil)
