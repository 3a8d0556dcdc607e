package pool

import "twitchirc/internal/connection"

// placementResult is the outcome of choosePlacement for one channel: at
// most one of conn/createNew/pending is the path to take next.
type placementResult struct {
	conn      *connection.Connection
	createNew bool
	pending   bool
}

// choosePlacement implements the pool's five-step placement algorithm.
// live excludes connections that have already failed this particular
// channel's join this round.
func (p *Pool) choosePlacement(live []*connection.Connection) placementResult {
	var spareNotBusy, spareBusy []*connection.Connection

	for _, c := range live {
		if c.ChannelCount() >= p.cfg.MaxChannelsPerConnection {
			continue
		}
		if c.BusyScore() >= p.cfg.MaxWaitingMessagesPerConnection {
			spareBusy = append(spareBusy, c)
		} else {
			spareNotBusy = append(spareNotBusy, c)
		}
	}

	// Step 2: a spare, non-busy connection always wins.
	if len(spareNotBusy) > 0 {
		return placementResult{conn: leastLoaded(spareNotBusy)}
	}

	// Step 3: no (a); open a new connection if the rate limiter allows.
	if p.connLimiter.Allow() {
		return placementResult{createNew: true}
	}

	// Step 4: fall back to the least-busy spare-but-busy connection.
	if len(spareBusy) > 0 {
		return placementResult{conn: leastBusy(spareBusy)}
	}

	// Step 5: nothing usable right now; retry later.
	return placementResult{pending: true}
}

// leastLoaded picks the smallest joined-channel count, tie-broken by the
// lexicographically lowest connection id. Ids are "conn-N" strings, so
// this is oldest-first only up to conn-9 ("conn-10" sorts before "conn-2").
func leastLoaded(conns []*connection.Connection) *connection.Connection {
	best := conns[0]
	for _, c := range conns[1:] {
		if c.ChannelCount() < best.ChannelCount() ||
			(c.ChannelCount() == best.ChannelCount() && c.ID() < best.ID()) {
			best = c
		}
	}
	return best
}

// leastBusy picks the lowest busy_score among spare-but-busy
// connections, used as placement step 4.
func leastBusy(conns []*connection.Connection) *connection.Connection {
	best := conns[0]
	for _, c := range conns[1:] {
		if c.BusyScore() < best.BusyScore() ||
			(c.BusyScore() == best.BusyScore() && c.ID() < best.ID()) {
			best = c
		}
	}
	return best
}
