// Package oastats turns OpenArena and Quake 3 games.log files into
// cumulative per-player statistics.
//
// A log is append-only while the server runs, so processing is incremental:
// each run reads only the lines after the previous snapshot, splits them into
// games, keeps the players who took part in enough of each game, and merges
// the resulting batch into the snapshot.
//
// # Basic Usage
//
// Process a log once, keeping the snapshot next to it:
//
//	st := store.NewFileStore("")
//	res, err := oastats.Run(ctx, "/srv/openarena/baseoa/games.log", st,
//	    oastats.WithMinPlay(0.5),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range res.Players {
//	    fmt.Printf("%s: %d frags in %d games\n", p.Nick, p.Frags, p.Games)
//	}
//
// Without a store, pass the previous snapshot explicitly:
//
//	res, snap, err := oastats.ProcessLog(ctx, path, prev)
//
// # Watching a Log
//
// [Watcher] runs once at start and again every time a game shuts down:
//
//	w, err := oastats.NewWatcher(path, st)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	results, errs, err := w.Watch(ctx)
//
// # Custom Parsers
//
// Line classification goes through the [Parser] interface. [DefaultParser]
// understands the stock games.log format; wrap it with [ExcludeTypes] or
// combine parsers with [ParserChain]:
//
//	p := oastats.ExcludeTypes(oastats.DefaultParser{}, event.Say)
//	res, err := oastats.Run(ctx, path, st, oastats.WithParser(p))
package oastats
