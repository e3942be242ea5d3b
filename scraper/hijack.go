package scraper

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// resourceTypes maps the config names of blockable resources to their
// protocol values.
var resourceTypes = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Script":     proto.NetworkResourceTypeScript,
}

// adDomains lists ad and tracking hosts blocked when a request sets
// block_ads. Subdomains of an entry are blocked too.
var adDomains = newDomainSet(
	"doubleclick.net", "googlesyndication.com", "googleadservices.com",
	"google-analytics.com", "googletagmanager.com", "googletagservices.com",
	"facebook.net", "adnxs.com", "adsrvr.org", "amazon-adsystem.com",
	"criteo.com", "criteo.net", "outbrain.com", "taboola.com", "moatads.com",
	"pubmatic.com", "rubiconproject.com", "scorecardresearch.com",
	"quantserve.com", "hotjar.com", "mixpanel.com", "segment.io",
	"segment.com", "ads-twitter.com", "chartbeat.com", "chartbeat.net",
	"optimizely.com", "media.net", "bidswitch.net", "openx.net",
	"casalemedia.com", "demdex.net", "krxd.net", "bluekai.com",
	"mathtag.com", "serving-sys.com", "rlcdn.com", "sharethis.com",
	"addthis.com", "consensu.org",
)

type domainSet map[string]struct{}

func newDomainSet(domains ...string) domainSet {
	s := make(domainSet, len(domains))
	for _, d := range domains {
		s[d] = struct{}{}
	}
	return s
}

// contains reports whether host or any of its parent domains is in the set.
func (s domainSet) contains(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for host != "" {
		if _, ok := s[host]; ok {
			return true
		}
		idx := strings.IndexByte(host, '.')
		if idx < 0 {
			return false
		}
		host = host[idx+1:]
	}
	return false
}

// resourceBlocker decides which sub-requests of a page are failed.
type resourceBlocker struct {
	types    map[proto.NetworkResourceType]struct{}
	blockAds bool
}

func newResourceBlocker(blockedTypes []string, blockAds bool) *resourceBlocker {
	b := &resourceBlocker{
		types:    make(map[proto.NetworkResourceType]struct{}, len(blockedTypes)),
		blockAds: blockAds,
	}
	for _, name := range blockedTypes {
		if rt, ok := resourceTypes[name]; ok {
			b.types[rt] = struct{}{}
		}
	}
	return b
}

// active reports whether the blocker would ever block anything.
func (b *resourceBlocker) active() bool {
	return len(b.types) > 0 || b.blockAds
}

func (b *resourceBlocker) shouldBlock(rt proto.NetworkResourceType, rawURL string) bool {
	// The document itself is never blocked.
	if rt == proto.NetworkResourceTypeDocument {
		return false
	}
	if _, ok := b.types[rt]; ok {
		return true
	}
	if b.blockAds {
		if u, err := url.Parse(rawURL); err == nil && adDomains.contains(u.Hostname()) {
			return true
		}
	}
	return false
}

// setupHijack installs a request interceptor on the page. It returns the
// running router so the caller can stop it, or nil when nothing is blocked.
func setupHijack(page *rod.Page, blockedTypes []string, blockAds bool) *rod.HijackRouter {
	blocker := newResourceBlocker(blockedTypes, blockAds)
	if !blocker.active() {
		return nil
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(h *rod.Hijack) {
		if blocker.shouldBlock(h.Request.Type(), h.Request.URL().String()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// Run blocks until Stop is called.
	go router.Run()

	return router
}
