// SPDX-License-Identifier: GPL-3.0-or-later

package apiflow

import (
	"log/slog"
	"net"
	"time"

	"github.com/bassosimone/safeconn"
)

// dnsExchangeLog emits the events of a single [*DNSResolver] exchange.
type dnsExchangeLog struct {
	errClassifier  ErrClassifier
	localAddr      string
	logger         SLogger
	protocol       string
	rawQuery       []byte
	remoteAddr     string
	serverProtocol string
	t0             time.Time
	deadline       time.Time
	timeNow        func() time.Time
}

func newDNSExchangeLog(r *DNSResolver, conn net.Conn, deadline time.Time) *dnsExchangeLog {
	return &dnsExchangeLog{
		errClassifier:  r.Config.ErrClassifier,
		localAddr:      safeconn.LocalAddr(conn),
		logger:         r.Logger,
		protocol:       safeconn.Network(conn),
		remoteAddr:     safeconn.RemoteAddr(conn),
		serverProtocol: r.Protocol,
		t0:             r.Config.TimeNow(),
		deadline:       deadline,
		timeNow:        r.Config.TimeNow,
	}
}

func (lc *dnsExchangeLog) start(domain string) {
	lc.logger.Info(
		"dnsExchangeStart",
		slog.Time("deadline", lc.deadline),
		slog.String("dnsDomain", domain),
		slog.String("localAddr", lc.localAddr),
		slog.String("protocol", lc.protocol),
		slog.String("remoteAddr", lc.remoteAddr),
		slog.String("serverProtocol", lc.serverProtocol),
		slog.Time("t", lc.t0),
	)
}

func (lc *dnsExchangeLog) done(domain string, err error) {
	lc.logger.Info(
		"dnsExchangeDone",
		slog.Time("deadline", lc.deadline),
		slog.String("dnsDomain", domain),
		slog.Any("err", err),
		slog.String("errClass", lc.errClassifier.Classify(err)),
		slog.String("localAddr", lc.localAddr),
		slog.String("protocol", lc.protocol),
		slog.String("remoteAddr", lc.remoteAddr),
		slog.String("serverProtocol", lc.serverProtocol),
		slog.Time("t0", lc.t0),
		slog.Time("t", lc.timeNow()),
	)
}

// observeQuery records the raw query so the response event can include it.
func (lc *dnsExchangeLog) observeQuery(rawQuery []byte) {
	lc.rawQuery = rawQuery
	lc.logger.Debug(
		"dnsQuery",
		slog.Any("dnsRawQuery", rawQuery),
		slog.String("remoteAddr", lc.remoteAddr),
		slog.String("serverProtocol", lc.serverProtocol),
		slog.Time("t", lc.timeNow()),
	)
}

func (lc *dnsExchangeLog) observeResponse(rawResp []byte) {
	lc.logger.Debug(
		"dnsResponse",
		slog.Any("dnsRawQuery", lc.rawQuery),
		slog.Any("dnsRawResponse", rawResp),
		slog.String("remoteAddr", lc.remoteAddr),
		slog.String("serverProtocol", lc.serverProtocol),
		slog.Time("t0", lc.t0),
		slog.Time("t", lc.timeNow()),
	)
}
