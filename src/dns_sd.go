package pamon

/*------------------------------------------------------------------
 *
 * Purpose:   	Announce the telemetry TCP service using DNS-SD
 *
 * Description:
 *
 *     Lets a dashboard on the local network find the monitor without
 *     being told its address.  Uses the pure-Go github.com/brutella/dnssd
 *     package, so no system daemon is required.
 */

import (
	"context"
	"fmt"
	"os"

	"github.com/brutella/dnssd"
	"github.com/charmbracelet/log"
)

const DNSSDServiceType = "_pamon._tcp"

// DNSSDDefaultName is "pamon on <hostname>", or just "pamon" if the
// hostname cannot be obtained.
func DNSSDDefaultName() string {
	var hostname, err = os.Hostname()
	if err != nil || hostname == "" {
		return "pamon"
	}

	return "pamon on " + hostname
}

// AnnounceDNSSD advertises port until ctx is done.
func AnnounceDNSSD(ctx context.Context, name string, port int, logger *log.Logger) error {
	if name == "" {
		name = DNSSDDefaultName()
	}

	var sv, err = dnssd.NewService(dnssd.Config{ //nolint:exhaustruct
		Name: name,
		Type: DNSSDServiceType,
		Port: port,
	})
	if err != nil {
		return fmt.Errorf("dns-sd: create service: %w", err)
	}

	var rp, rpErr = dnssd.NewResponder()
	if rpErr != nil {
		return fmt.Errorf("dns-sd: create responder: %w", rpErr)
	}

	if _, err := rp.Add(sv); err != nil {
		return fmt.Errorf("dns-sd: add service: %w", err)
	}

	logger.Info("dns-sd: announcing telemetry service", "port", port, "name", name)

	go func() {
		if err := rp.Respond(ctx); err != nil && ctx.Err() == nil {
			logger.Error("dns-sd: responder error", "err", err)
		}
	}()

	return nil
}
