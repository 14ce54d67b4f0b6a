// Command liqpay builds signed LiqPay payloads and checkout forms, decodes
// callbacks and calls the API from the shell.
//
// Credentials come from LIQPAY_PUBLIC_KEY, LIQPAY_PRIVATE_KEY and
// LIQPAY_BASE_URL; the -public-key, -private-key and -base-url flags take
// precedence.
//
//	liqpay form -amount 10 -currency UAH -description "Order 42"
//	liqpay data -amount 10 -currency UAH -description "Order 42"
//	liqpay sign -data eyJ...
//	liqpay decode -data eyJ... -signature abc=
//	liqpay api -path request -param action=status -param order_id=42
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/liqpay/liqpay-go"
	"github.com/liqpay/liqpay-go/internal/transport"
	"github.com/liqpay/liqpay-go/signature"
)

const (
	publicKeyEnvVar  = "LIQPAY_PUBLIC_KEY"
	privateKeyEnvVar = "LIQPAY_PRIVATE_KEY" //nolint:gosec
	baseURLEnvVar    = "LIQPAY_BASE_URL"
)

var errUsage = errors.New("usage: liqpay <form|data|sign|decode|api> [flags]")

func main() {
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Getenv, os.Stdout, log); err != nil {
		log.Error("liqpay failed", tint.Err(err))
		os.Exit(1)
	}
}

// credentials holds the merchant configuration shared by all subcommands.
type credentials struct {
	publicKey  string
	privateKey string
	baseURL    string
	protocol   string
	verbose    bool
}

func (c *credentials) register(fs *flag.FlagSet, getenv func(string) string) {
	fs.StringVar(&c.publicKey, "public-key", getenv(publicKeyEnvVar), "merchant public key (env "+publicKeyEnvVar+")")
	fs.StringVar(&c.privateKey, "private-key", getenv(privateKeyEnvVar), "merchant private key (env "+privateKeyEnvVar+")")
	fs.StringVar(&c.baseURL, "base-url", getenv(baseURLEnvVar), "API base URL (env "+baseURLEnvVar+")")
	fs.StringVar(&c.protocol, "protocol", liqpay.ProtocolV3.Name(), "signing protocol: 3, 3-encoded or legacy")
	fs.BoolVar(&c.verbose, "v", false, "log request diagnostics")
}

func (c *credentials) client(log *slog.Logger) (*liqpay.Client, error) {
	protocol, ok := liqpay.ProtocolByName(c.protocol)
	if !ok {
		return nil, fmt.Errorf("unknown protocol %q", c.protocol)
	}
	opts := []liqpay.Option{liqpay.WithProtocol(protocol)}
	if c.baseURL != "" {
		if _, err := transport.ParseBaseURL(c.baseURL); err != nil {
			return nil, err
		}
		opts = append(opts, liqpay.WithBaseURL(c.baseURL))
	}
	if c.verbose {
		opts = append(opts, liqpay.WithLogger(log.With("client", "liqpay")))
	}
	return liqpay.New(c.publicKey, c.privateKey, opts...), nil
}

// paramFlags collects repeated -param key=value pairs.
type paramFlags liqpay.Params

func (p paramFlags) String() string {
	pairs := make([]string, 0, len(p))
	for k, v := range p {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(pairs, ",")
}

func (p paramFlags) Set(value string) error {
	k, v, ok := strings.Cut(value, "=")
	if !ok || k == "" {
		return fmt.Errorf("param %q must be key=value", value)
	}
	p[k] = v
	return nil
}

// checkoutFlags are the common checkout parameters of form and data.
type checkoutFlags struct {
	amount      string
	currency    string
	description string
	orderID     string
	language    string
	action      string
	sandbox     bool
	extra       paramFlags
}

func (f *checkoutFlags) register(fs *flag.FlagSet) {
	f.extra = paramFlags{}
	fs.StringVar(&f.amount, "amount", "", "payment amount")
	fs.StringVar(&f.currency, "currency", "UAH", "currency code")
	fs.StringVar(&f.description, "description", "", "payment description")
	fs.StringVar(&f.orderID, "order-id", "", "merchant order id (random when empty)")
	fs.StringVar(&f.language, "language", "", "checkout language")
	fs.StringVar(&f.action, "action", liqpay.ActionPay, "checkout action")
	fs.BoolVar(&f.sandbox, "sandbox", false, "sandbox mode")
	fs.Var(f.extra, "param", "extra key=value parameter, repeatable")
}

func (f *checkoutFlags) params() liqpay.Params {
	params := liqpay.Params(f.extra).Clone()
	orderID := f.orderID
	if orderID == "" {
		orderID = liqpay.NewOrderID()
	}
	params["action"] = f.action
	params["version"] = liqpay.APIVersion
	params["amount"] = f.amount
	params["currency"] = f.currency
	params["description"] = f.description
	params["order_id"] = orderID
	params["sandbox"] = f.sandbox
	if f.language != "" {
		params["language"] = f.language
	}
	return params
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout io.Writer, log *slog.Logger) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]
	fs := flag.NewFlagSet("liqpay "+cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var creds credentials
	creds.register(fs, getenv)

	switch cmd {
	case "form", "data":
		var checkout checkoutFlags
		checkout.register(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		client, err := creds.client(log)
		if err != nil {
			return err
		}
		if cmd == "form" {
			form, err := client.CNBForm(checkout.params())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(stdout, form)
			return err
		}
		data, sig, err := client.FormData(checkout.params())
		if err != nil {
			return err
		}
		return writeJSON(stdout, map[string]string{"data": data, "signature": sig})

	case "sign":
		data := fs.String("data", "", "payload to sign")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *data == "" {
			return errors.New("sign: -data is required")
		}
		_, err := fmt.Fprintln(stdout, signature.Sign(creds.privateKey, []byte(*data)))
		return err

	case "decode":
		data := fs.String("data", "", "base64 callback payload")
		sig := fs.String("signature", "", "callback signature; skips verification when empty")
		if err := fs.Parse(args); err != nil {
			return err
		}
		client, err := creds.client(log)
		if err != nil {
			return err
		}
		var params liqpay.Params
		if *sig == "" {
			log.Warn("decoding without signature verification")
			params, err = client.DecodeData(*data)
		} else {
			params, err = client.DecodeCallback(*data, *sig)
		}
		if err != nil {
			return err
		}
		return writeJSON(stdout, params)

	case "api":
		path := fs.String("path", liqpay.EndpointRequest, "endpoint path relative to the base URL")
		timeout := fs.Duration("timeout", 30*time.Second, "request timeout")
		extra := paramFlags{}
		fs.Var(extra, "param", "key=value parameter, repeatable")
		if err := fs.Parse(args); err != nil {
			return err
		}
		client, err := creds.client(log)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, *timeout)
		defer cancel()
		resp, err := client.API(ctx, *path, liqpay.Params(extra))
		if err != nil {
			return err
		}
		if err := writeJSON(stdout, resp); err != nil {
			return err
		}
		return resp.Err()

	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
