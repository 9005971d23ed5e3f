// Package images builds CDN image URLs: signed transform URLs for
// marketplace media and path rewrites for catalog-hosted attachments.
package images

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Format names understood by Transformer.URL.
const (
	FormatDefault          = "default"
	FormatProductFull      = "productFull"
	FormatProductThumbnail = "productThumbnail"
)

var (
	urlValidator     = regexp.MustCompile(`^((http|https)://|(//)).*`)
	protocolPattern  = regexp.MustCompile(`https?://`)
	attachmentNeedle = regexp.MustCompile(`(Attachment.*)`)
)

// formats maps a format name to the transform query parameters sent to the
// image service.
var formats = map[string]url.Values{
	FormatDefault: {
		"auto": {"compress,format"},
	},
	FormatProductFull: {
		"w":         {"750"},
		"h":         {"555"},
		"ch":        {"Width"},
		"auto":      {"format"},
		"cs":        {"strip"},
		"bg":        {"FFFFFF"},
		"q":         {"60"},
		"trimcolor": {"FFFFFF"},
		"trim":      {"color"},
		"fit":       {"fillmax"},
	},
	FormatProductThumbnail: {
		"w":         {"270"},
		"h":         {"220"},
		"bg":        {"FFFFFF"},
		"ch":        {"Width,Save-Data"},
		"auto":      {"format,compress"},
		"trimcolor": {"FFFFFF"},
		"trim":      {"color"},
		"fit":       {"fillmax"},
	},
}

// Transformer renders signed transform URLs against an imgix-style host.
// The zero value (no host/token) passes every URL through untouched.
type Transformer struct {
	host     string
	token    string
	disabled bool
}

// NewTransformer builds a Transformer; host and token both empty leaves it
// unconfigured, which is a valid passthrough state.
func NewTransformer(host, token string) *Transformer {
	return &Transformer{host: strings.TrimSpace(host), token: strings.TrimSpace(token)}
}

// Disable toggles passthrough mode at runtime.
func (t *Transformer) Disable(disabled bool) {
	t.disabled = disabled
}

// Active reports whether URLs will actually be transformed.
func (t *Transformer) Active() bool {
	return t != nil && !t.disabled && t.host != "" && t.token != ""
}

// URL returns the transform URL for raw under the named format. Invalid or
// empty URLs, and inactive transformers, return the input unchanged.
// Protocol-relative URLs get protocolIfMissing prepended.
func (t *Transformer) URL(raw, format, protocolIfMissing string) (string, error) {
	if raw == "" || !urlValidator.MatchString(raw) {
		return raw, nil
	}
	if !t.Active() {
		return raw, nil
	}
	if strings.HasPrefix(raw, "//") {
		if protocolIfMissing != "http" && protocolIfMissing != "https" {
			return "", fmt.Errorf("images: protocol %q not supported", protocolIfMissing)
		}
		raw = protocolIfMissing + ":" + raw
	}

	raw = reencodeNestedProtocol(raw)

	params, ok := formats[format]
	if !ok {
		params = formats[FormatDefault]
	}

	path := "/" + url.PathEscape(raw)
	query := encodeSorted(params)
	signature := t.sign(path, query)

	return fmt.Sprintf("https://%s%s?%s&s=%s", t.host, path, query, signature), nil
}

// sign computes the md5 token signature over path and query, the scheme the
// image service verifies on its end.
func (t *Transformer) sign(path, query string) string {
	payload := t.token + path
	if query != "" {
		payload += "?" + query
	}
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// reencodeNestedProtocol double-encodes the inner protocol of proxied URLs
// ("https://cdn/https://origin/img.jpg"); the image service rejects two
// plain protocols in one URL.
func reencodeNestedProtocol(raw string) string {
	matches := protocolPattern.FindAllStringIndex(raw, -1)
	if len(matches) < 2 {
		return raw
	}
	second := matches[1][0]
	return raw[:second] + url.QueryEscape(raw[second:])
}

func encodeSorted(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		for _, v := range params[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// CatalogCDN rewrites commerce-suite attachment paths onto the static CDN
// host.
type CatalogCDN struct {
	imagePath string
	baseHost  string
}

// NewCatalogCDN builds the rewriter. imagePath is the CDN prefix for
// attachment assets; baseHost is the storefront host used as fallback.
func NewCatalogCDN(imagePath, baseHost string) *CatalogCDN {
	return &CatalogCDN{imagePath: strings.TrimRight(imagePath, "/"), baseHost: baseHost}
}

// Rewrite maps a raw catalog image path to its CDN URL.
func (c *CatalogCDN) Rewrite(raw string) string {
	if raw == "" {
		return ""
	}
	raw = strings.Replace(raw, "/wcsstore/", "", 1)
	if c.imagePath != "" {
		if m := attachmentNeedle.FindString(raw); m != "" {
			return c.imagePath + "/" + m
		}
	}
	return "//" + c.baseHost + "/wcsstore/" + raw
}
