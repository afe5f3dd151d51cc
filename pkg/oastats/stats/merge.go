package stats

import "slices"

// Merge combines a previous snapshot (nil for none) with a new batch.
//
// Additive fields sum, ping min/max are taken element-wise, and averages are
// recomputed from the summed totals, which equals the games-weighted mean of
// both sides. Server time and frags sum; game type and hostname come from
// the batch. Quotes are unioned. A batch without games leaves the previous
// data untouched.
//
// LinesProcessed, LogSize and WrittenAt are copied from prev; the caller sets
// them for the run that produced the batch.
func Merge(prev *Snapshot, batch Batch) Snapshot {
	out := Snapshot{Version: SnapshotVersion}
	if prev != nil {
		out.Players = slices.Clone(prev.Players)
		out.Quotes = slices.Clone(prev.Quotes)
		out.Server = prev.Server
		out.LinesProcessed = prev.LinesProcessed
		out.LogSize = prev.LogSize
		out.WrittenAt = prev.WrittenAt
	}
	if batch.Games == 0 {
		return out
	}

	index := make(map[string]int, len(out.Players))
	for i, p := range out.Players {
		index[p.Nick] = i
	}
	for _, p := range batch.Players {
		if i, ok := index[p.Nick]; ok {
			out.Players[i].Add(p)
			continue
		}
		index[p.Nick] = len(out.Players)
		out.Players = append(out.Players, p)
	}
	sortByNick(out.Players)

	out.Server.Time += batch.Server.Time
	out.Server.Frags += batch.Server.Frags
	out.Server.GameType = batch.Server.GameType
	out.Server.Hostname = batch.Server.Hostname

	quotes := NewQuoteSet(out.Quotes...)
	quotes.Union(batch.Quotes)
	out.Quotes = quotes.Sorted()
	return out
}
