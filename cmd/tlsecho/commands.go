package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tlsecho/tlsecho-go/pkg/cert"
	"github.com/tlsecho/tlsecho-go/pkg/config"
	"github.com/tlsecho/tlsecho-go/pkg/discovery"
	"github.com/tlsecho/tlsecho-go/pkg/transport"
)

// commonFlags are shared by server and client.
type commonFlags struct {
	configFile  string
	logLevel    string
	protocolLog string
	address     string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configFile, "config", "", "YAML configuration file")
	fs.StringVar(&c.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (default from config: info)")
	fs.StringVar(&c.protocolLog, "protocol-log", "", "File path for protocol event capture (CBOR format)")
	fs.StringVar(&c.address, "address", "", "TCP address (default from config: localhost:9999)")
}

// setup loads the config, applies flag overrides and builds the logger.
func (c *commonFlags) setup(stderr io.Writer) (*config.Config, *slog.Logger, error) {
	cfg := config.Default()
	if c.configFile != "" {
		var err error
		if cfg, err = config.Load(c.configFile); err != nil {
			return nil, nil, err
		}
	}

	if c.logLevel != "" {
		if _, err := ParseLevel(c.logLevel); err != nil {
			return nil, nil, usagef("-log-level: %v", err)
		}
		cfg.LogLevel = c.logLevel
	}
	if c.protocolLog != "" {
		cfg.ProtocolLog = c.protocolLog
	}
	if c.address != "" {
		cfg.Address = c.address
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, usagef("invalid configuration: %v", err)
	}

	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, newLogger(stderr, level), nil
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usagef("%v", err)
	}
	if fs.NArg() > 0 {
		return usagef("unexpected argument %q", fs.Arg(0))
	}
	return nil
}

func runServer(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, `tlsecho server - Accept one connection and log the received message

Usage:
  tlsecho server -cert <file> -privkey <file> [flags]

Flags:
`)
		fs.PrintDefaults()
	}

	var common commonFlags
	common.register(fs)
	certFile := fs.String("cert", "", "PEM certificate chain, leaf first (required)")
	keyFile := fs.String("privkey", "", "PEM RSA private key (required)")
	advertise := fs.Bool("advertise", false, "Advertise the server over mDNS")

	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *certFile == "" || *keyFile == "" {
		fs.Usage()
		return usagef("-cert and -privkey are required")
	}

	cfg, logger, err := common.setup(stderr)
	if err != nil {
		return err
	}

	serverCert, err := cert.LoadServerCertificate(*certFile, *keyFile)
	if err != nil {
		return err
	}

	capture, closeCapture, err := openCapture(cfg.ProtocolLog, logger)
	if err != nil {
		return err
	}
	defer closeCapture()

	srvConfig := transport.ServerConfig{
		TLSConfig:       &transport.TLSConfig{Certificate: serverCert},
		Address:         cfg.Address,
		ServerName:      cfg.ServerName,
		HandshakeBudget: cfg.HandshakeBudget,
		Logger:          logger,
		ProtocolLogger:  capture,
	}
	if *advertise || cfg.Advertise {
		advConfig := discovery.DefaultAdvertiserConfig()
		advConfig.Interface = cfg.Interface
		srvConfig.Advertiser = discovery.NewMDNSAdvertiser(advConfig)
	}

	srv, err := transport.NewServer(srvConfig)
	if err != nil {
		return err
	}
	defer srv.Close()

	_, err = srv.ServeOne(ctx)
	return err
}

func runClient(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, `tlsecho client - Send one message to the server

Usage:
  tlsecho client -ca <file> [flags]

Flags:
`)
		fs.PrintDefaults()
	}

	var common commonFlags
	common.register(fs)
	caFile := fs.String("ca", "", "PEM file with trusted CA certificates (required)")

	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *caFile == "" {
		fs.Usage()
		return usagef("-ca is required")
	}

	cfg, logger, err := common.setup(stderr)
	if err != nil {
		return err
	}

	roots, err := cert.LoadCertPool(*caFile)
	if err != nil {
		return err
	}

	capture, closeCapture, err := openCapture(cfg.ProtocolLog, logger)
	if err != nil {
		return err
	}
	defer closeCapture()

	client, err := transport.NewClient(transport.ClientConfig{
		TLSConfig: &transport.TLSConfig{
			RootCAs:    roots,
			ServerName: cfg.ServerName,
		},
		Address:         cfg.Address,
		Payload:         []byte(cfg.Payload),
		HandshakeBudget: cfg.HandshakeBudget,
		ConnectTimeout:  cfg.ConnectTimeout,
		Logger:          logger,
		ProtocolLogger:  capture,
	})
	if err != nil {
		return err
	}
	return client.Send(ctx)
}

func runCerts(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("certs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, `tlsecho certs - Write a demo CA and localhost server certificate

Usage:
  tlsecho certs [-out <dir>]

Flags:
`)
		fs.PrintDefaults()
	}

	out := fs.String("out", ".", "Output directory")

	if err := parseFlags(fs, args); err != nil {
		return err
	}

	if err := os.MkdirAll(*out, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	files, err := cert.WriteDemoFiles(*out)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "CA certificate:     %s\n", files.CAFile)
	fmt.Fprintf(stdout, "Server certificate: %s\n", files.CertFile)
	fmt.Fprintf(stdout, "Server key:         %s\n", files.KeyFile)
	return nil
}
