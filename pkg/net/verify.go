package net

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// NewLinkVerifier creates a new LinkVerifier over the provided netlink provider
func NewLinkVerifier(provider NetlinkProvider, log klog.Logger) *LinkVerifier {
	return &LinkVerifier{provider: provider, log: log}
}

// LinkVerifier checks that interface names in a descriptor list exist as
// links on the host. Verification is optional: descriptors may legitimately
// name interfaces that only appear later (VPN tunnels), so the caller
// decides whether a missing link is fatal.
type LinkVerifier struct {
	provider NetlinkProvider
	log      klog.Logger
}

// Verify returns an error if any of the provided interface names has no
// corresponding link on the host
func (v *LinkVerifier) Verify(names []string) error {
	for _, name := range names {
		if _, err := v.provider.LinkByName(name); err != nil {
			return errors.Wrapf(err, "interface %q not found on host", name)
		}
		v.log.V(5).Info("verified link", "interface", name)
	}
	return nil
}
