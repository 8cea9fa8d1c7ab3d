// Package page is a default request service answering
// "render:<html>" requests by sanitizing untrusted HTML, ported from
// original_source/src/default_services/page.rs's asset/page-serving
// role (trimmed to the sanitization concern this repository's scope
// covers; the original's SCSS compilation and on-disk page bundles are
// part of the device/asset pipeline this repo treats as out of scope).
// Grounded in microcosm-cc/bluemonday, the stack's answer to
// "untrusted HTML in, safe HTML out".
package page

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/z3phyrl/zeitop/internal/embed"
)

const requestPrefix = "render:"

// Run registers "page" as a request service at addr and serves
// sanitization requests until the connection fails.
func Run(addr string) error {
	svc, err := embed.OpenRequestService(addr, "page")
	if err != nil {
		return err
	}
	defer svc.Close()

	policy := bluemonday.UGCPolicy()

	for {
		req, err := svc.Next()
		if err != nil {
			return err
		}
		handle(req, policy)
	}
}

func handle(req *embed.Request, policy *bluemonday.Policy) {
	html, ok := strings.CutPrefix(req.Data, requestPrefix)
	if !ok {
		req.Error("Invalid Page")
		return
	}
	req.Text(policy.Sanitize(html))
}
