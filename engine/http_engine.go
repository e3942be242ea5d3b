package engine

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	tls "github.com/refraction-networking/utls"
	"golang.org/x/net/html"
)

const (
	maxBody      = 10 << 20
	maxRedirects = 10
	dialTimeout  = 10 * time.Second
)

// browserHeaders are sent on every request; request headers override them.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Accept-Encoding": "identity",
}

// newHelloH1 builds Chrome's ClientHello with ALPN narrowed to http/1.1,
// since http.Transport cannot run h2 over a utls connection. ApplyPreset
// writes into its extensions, so every connection needs its own.
func newHelloH1() (*tls.ClientHelloSpec, error) {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return nil, err
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			break
		}
	}
	return &spec, nil
}

// HTTPEngine fetches HTML without a browser. Scripts never run, so it only
// suits pages whose listings are server-rendered.
type HTTPEngine struct {
	client *http.Client
}

// NewHTTPEngine builds an engine that dials with a Chrome TLS fingerprint.
// proxy is used when it is an http or https URL and ignored otherwise.
func NewHTTPEngine(proxy string) *HTTPEngine {
	return newHTTPEngine(proxy, nil)
}

// newHTTPEngine is NewHTTPEngine with the certificate pool used to verify
// servers; nil means the system roots.
func newHTTPEngine(proxy string, roots *x509.CertPool) *HTTPEngine {
	d := chromeDialer{roots: roots}
	tr := &http.Transport{DialTLSContext: d.dial}
	if u, err := url.Parse(proxy); proxy != "" && err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		tr.Proxy = http.ProxyURL(u)
	}
	return &HTTPEngine{client: &http.Client{
		Transport: tr,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errors.New("too many redirects")
			}
			return nil
		},
	}}
}

type chromeDialer struct {
	roots *x509.CertPool
}

func (d chromeDialer) dial(ctx context.Context, network, addr string) (net.Conn, error) {
	spec, err := newHelloH1()
	if err != nil {
		return nil, fmt.Errorf("http engine: chrome hello: %w", err)
	}
	raw, err := (&net.Dialer{Timeout: dialTimeout}).DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	host, _, _ := net.SplitHostPort(addr)
	conn := tls.UClient(raw, &tls.Config{ServerName: host, RootCAs: d.roots}, tls.HelloCustom)
	if err := conn.ApplyPreset(spec); err != nil {
		raw.Close()
		return nil, fmt.Errorf("http engine: tls preset: %w", err)
	}
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, err
	}
	return conn, nil
}

func (e *HTTPEngine) Name() string { return "http" }

// Fetch GETs req.URL and returns its HTML. Error statuses and non-HTML
// bodies are errors.
func (e *HTTPEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	hr, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("http engine: %w", err)
	}
	for k, v := range browserHeaders {
		hr.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		hr.Header.Set(k, v)
	}

	resp, err := e.client.Do(hr)
	if err != nil {
		return nil, fmt.Errorf("http engine: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("http engine: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("http engine: %s returned status %d", req.URL, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !isHTML(ct, body) {
		return nil, fmt.Errorf("http engine: %s is not html (content-type %q)", req.URL, ct)
	}

	doc := string(body)
	return &FetchResult{
		HTML:       doc,
		Title:      extractTitle(doc),
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
		EngineName: e.Name(),
	}, nil
}

// isHTML trusts a declared Content-Type and sniffs the body when the server
// sent none.
func isHTML(contentType string, body []byte) bool {
	if contentType == "" {
		m := mimetype.Detect(body)
		return m.Is("text/html") || m.Is("application/xhtml+xml")
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}

// extractTitle returns the trimmed text of the first <title>, or "".
func extractTitle(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) != "title" {
				continue
			}
			if z.Next() == html.TextToken {
				return strings.TrimSpace(string(z.Text()))
			}
			return ""
		}
	}
}
