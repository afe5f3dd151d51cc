package game

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oastats/oastats-go/internal/parser"
	"github.com/oastats/oastats-go/pkg/oastats/event"
	"github.com/oastats/oastats-go/pkg/oastats/stats"
)

func classify(_ context.Context, line string) (*event.Event, error) {
	return parser.Parse(line)
}

func logOf(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func segment(t *testing.T, log string, start int, minPlay float64) Segment {
	t.Helper()
	seg, err := Run(context.Background(), NewCursor(strings.NewReader(log), start), Config{
		MinPlay:  minPlay,
		Classify: classify,
	})
	require.NoError(t, err)
	return seg
}

func byNick(games []stats.PlayerGame) map[string]stats.PlayerGame {
	m := make(map[string]stats.PlayerGame, len(games))
	for _, g := range games {
		m[g.Nick] = g
	}
	return m
}

const (
	separator = "  0:00 ------------------------------------------------------------"
	initDM    = `  0:00 InitGame: \sv_hostname\Frag Zone\g_gametype\0\mapname\q3dm17`
	initCTF   = `  0:00 InitGame: \sv_hostname\Flag Zone\g_gametype\4\mapname\q3ctf1`
	alice     = `  0:01 ClientUserinfoChanged: 0 n\Alice\t\0\model\sarge\hc\100`
	bob       = `  0:02 ClientUserinfoChanged: 1 n\Bob\t\0\model\grunt\hc\80`
	exit      = " 10:00 Exit: Timelimit hit."
	shutdown  = " 10:05 ShutdownGame:"
)

func deathmatch() string {
	return logOf(
		separator,
		initDM,
		alice,
		bob,
		"  1:00 Kill: 0 1 7: Alice killed Bob by MOD_ROCKET",
		"  2:00 Kill: 0 1 7: Alice killed Bob by MOD_ROCKET",
		"  3:00 Kill: 0 1 7: Alice killed Bob by MOD_ROCKET",
		"  3:30 say: Bob: not again",
		exit,
		" 10:00 score: 3  ping: 50  client: 0 Alice",
		" 10:00 score: 0  ping: 70  client: 1 Bob",
		shutdown,
		separator,
	)
}

func TestDeathmatch(t *testing.T) {
	seg := segment(t, deathmatch(), 1, 0.5)
	require.Len(t, seg.Games, 1)
	assert.Equal(t, 13, seg.Committed)
	assert.Zero(t, seg.Dropped)

	rec := seg.Games[0]
	assert.Equal(t, "q3dm17", rec.MapName)
	assert.Equal(t, "Frag Zone", rec.Hostname)
	assert.Equal(t, event.Deathmatch, rec.GameType)
	assert.Equal(t, 600, rec.Time)
	assert.Equal(t, 3, rec.Frags)
	assert.Equal(t, 599, rec.ServerTime())
	assert.Equal(t, 2, rec.StartLine)
	assert.Equal(t, 12, rec.EndLine)
	assert.Equal(t, []stats.Quote{{Speaker: "Bob", Text: "not again"}}, rec.Quotes.Sorted())

	players := byNick(Extract(rec))
	require.Len(t, players, 2)

	p1 := players["Alice"]
	assert.True(t, p1.Win)
	assert.Equal(t, 3, p1.Frags)
	assert.Equal(t, 3, p1.Weapons[stats.Rocket])
	assert.Equal(t, p1.Weapons.Sum(), p1.Frags)
	assert.Equal(t, 599, p1.Time)
	assert.Equal(t, 50, p1.Ping)
	assert.Equal(t, 100, p1.Handicap)

	p2 := players["Bob"]
	assert.False(t, p2.Win)
	assert.Zero(t, p2.Frags)
	assert.Equal(t, 3, p2.Deaths)
	assert.Equal(t, 80, p2.Handicap)
	assert.Equal(t, stats.CTFEvents{}, p2.CTF)
}

func TestPlaytimeRule(t *testing.T) {
	tests := []struct {
		name      string
		join      string
		wantValid bool
	}{
		{name: "late joiner", join: "9:00", wantValid: false},
		{name: "exactly half", join: "5:00", wantValid: false},
		{name: "just over half", join: "4:59", wantValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logOf(
				initDM,
				`  0:00 ClientUserinfoChanged: 0 n\Alice\t\0`,
				"  "+tt.join+` ClientUserinfoChanged: 2 n\Carl\t\0`,
				"  9:30 Kill: 2 0 10: Carl killed Alice by MOD_RAILGUN",
				exit,
				" 10:00 score: 5  ping: 50  client: 0 Alice",
				" 10:00 score: 1  ping: 70  client: 2 Carl",
				shutdown,
			)
			seg := segment(t, log, 1, 0.5)
			require.Len(t, seg.Games, 1)

			valid := seg.Games[0].Valid()
			assert.Contains(t, valid, "Alice")
			if tt.wantValid {
				assert.Contains(t, valid, "Carl")
			} else {
				assert.NotContains(t, valid, "Carl")
			}
		})
	}
}

func TestWorldKill(t *testing.T) {
	log := logOf(
		initDM,
		alice,
		bob,
		"  1:00 Kill: 1022 1 22: <world> killed Bob by MOD_TRIGGER_HURT",
		"  1:30 Kill: 0 1 10: Alice killed Bob by MOD_RAILGUN",
		exit,
		" 10:00 score: 1  ping: 50  client: 0 Alice",
		" 10:00 score: -1  ping: 70  client: 1 Bob",
		shutdown,
	)
	seg := segment(t, log, 1, 0.5)
	require.Len(t, seg.Games, 1)
	assert.Equal(t, 1, seg.Games[0].Frags)

	players := byNick(Extract(seg.Games[0]))
	assert.Equal(t, 2, players["Bob"].Deaths)
	assert.Equal(t, 1, players["Bob"].WorldFrags)
	assert.Equal(t, stats.Weapons{}, players["Bob"].Weapons)
	assert.Equal(t, 1, players["Alice"].Frags)
	assert.Equal(t, 1, players["Alice"].Weapons[stats.Railgun])
	assert.Zero(t, players["Alice"].WorldFrags)
}

func TestSuicide(t *testing.T) {
	log := logOf(
		initDM,
		alice,
		bob,
		"  1:00 Kill: 0 0 7: Alice killed Alice by MOD_ROCKET_SPLASH",
		"  1:30 Kill: 0 1 7: Alice killed Bob by MOD_ROCKET_SPLASH",
		exit,
		" 10:00 score: 0  ping: 50  client: 0 Alice",
		" 10:00 score: 0  ping: 70  client: 1 Bob",
		shutdown,
	)
	seg := segment(t, log, 1, 0.5)
	require.Len(t, seg.Games, 1)

	p := byNick(Extract(seg.Games[0]))["Alice"]
	assert.Equal(t, 1, p.Suicides)
	assert.Equal(t, 1, p.Deaths)
	assert.Equal(t, 1, p.Frags)
	assert.Equal(t, 1, p.Weapons[stats.RocketSplash])
	assert.Zero(t, p.Weapons[stats.Rocket])
}

func TestCTFTeamWins(t *testing.T) {
	log := logOf(
		initCTF,
		`  0:01 ClientUserinfoChanged: 0 n\Alice\t\1\model\sarge`,
		`  0:02 ClientUserinfoChanged: 1 n\Bob\t\2\model\grunt`,
		`  0:03 ClientUserinfoChanged: 2 n\Spec\t\3\model\grunt`,
		"  1:00 CTF: 0 2 0: Alice got the BLUE flag!",
		"  1:10 Kill: 1 0 10: Bob killed Alice by MOD_RAILGUN",
		"  1:10 CTF: 1 2 3: Bob fragged RED's flag carrier!",
		"  1:20 CTF: 1 2 2: Bob returned the BLUE flag!",
		"  2:00 Award: 1 3: Bob gained the DEFENCE award!",
		"  2:00 Award: 1 4: Bob gained the GAUNTLET award!",
		"  9:00 Kill: 0 1 3: Alice killed Bob by MOD_MACHINEGUN",
		" 10:00 Exit: Capturelimit hit.",
		" 10:00 red:4  blue:5",
		" 10:00 score: 12  ping: 50  client: 0 Alice",
		" 10:00 score: 10  ping: 70  client: 1 Bob",
		" 10:00 score: 0  ping: 0  client: 2 Spec",
		shutdown,
	)
	seg := segment(t, log, 1, 0.5)
	require.Len(t, seg.Games, 1)
	assert.Zero(t, seg.Dropped)

	players := byNick(Extract(seg.Games[0]))
	require.Contains(t, players, "Spec")

	assert.False(t, players["Alice"].Win, "red scored less")
	assert.True(t, players["Bob"].Win, "blue scored most")
	assert.False(t, players["Spec"].Win, "spectators never win")

	assert.Equal(t, stats.CTFEvents{1, 0, 0}, players["Alice"].CTF)
	assert.Equal(t, stats.CTFEvents{0, 1, 1}, players["Bob"].CTF)
	assert.Equal(t, 1, players["Bob"].Awards[stats.Defence])
	assert.Equal(t, stats.Awards{0, 0, 1, 0, 0}, players["Bob"].Awards)
}

func TestTeamGameWithoutScores(t *testing.T) {
	log := logOf(
		`  0:00 InitGame: \g_gametype\3\mapname\q3tourney2`,
		`  0:01 ClientUserinfoChanged: 0 n\Alice\t\1`,
		`  0:01 ClientUserinfoChanged: 1 n\Bob\t\2`,
		"  1:00 Kill: 0 1 10: Alice killed Bob by MOD_RAILGUN",
		exit,
		" 10:00 score: 1  ping: 50  client: 0 Alice",
		" 10:00 score: 0  ping: 70  client: 1 Bob",
		shutdown,
	)
	seg := segment(t, log, 1, 0.5)
	require.Len(t, seg.Games, 1)
	for _, p := range Extract(seg.Games[0]) {
		assert.False(t, p.Win, p.Nick)
	}
}

func TestSegmenterBoundaries(t *testing.T) {
	t.Run("warmup start is not a game", func(t *testing.T) {
		log := logOf(
			initDM,
			"  0:00 Warmup:",
			alice,
			bob,
			"  0:20 Kill: 0 1 7: Alice killed Bob by MOD_ROCKET",
			"  0:30 ShutdownGame:",
		)
		seg := segment(t, log, 1, 0.5)
		assert.Empty(t, seg.Games)
		assert.Zero(t, seg.Discarded)
		assert.Equal(t, 6, seg.Committed)
	})

	t.Run("shutdown before match end discards the game", func(t *testing.T) {
		log := logOf(
			initDM,
			alice,
			bob,
			"  1:00 Kill: 0 1 7: Alice killed Bob by MOD_ROCKET",
			" 10:00 score: 1  ping: 50  client: 0 Alice",
			shutdown,
		)
		seg := segment(t, log, 1, 0.5)
		assert.Empty(t, seg.Games)
		assert.Equal(t, 1, seg.Discarded)
		assert.Equal(t, 6, seg.Committed)
	})

	t.Run("game without players is dropped", func(t *testing.T) {
		log := logOf(initDM, separator, exit, shutdown)
		seg := segment(t, log, 1, 0.5)
		assert.Empty(t, seg.Games)
		assert.Equal(t, 1, seg.Discarded)
	})

	t.Run("open game at end of input stays unsettled", func(t *testing.T) {
		log := logOf(
			separator,
			initDM,
			alice,
			bob,
			"  1:00 Kill: 0 1 7: Alice killed Bob by MOD_ROCKET",
			exit,
			" 10:00 score: 1  ping: 50  client: 0 Alice",
		)
		seg := segment(t, log, 1, 0.5)
		assert.Empty(t, seg.Games)
		assert.Zero(t, seg.Discarded)
		assert.Equal(t, 1, seg.Committed)
	})

	t.Run("init on the last line opens nothing", func(t *testing.T) {
		seg := segment(t, logOf(separator, separator, initDM), 1, 0.5)
		assert.Empty(t, seg.Games)
		assert.Equal(t, 2, seg.Committed)
	})

	t.Run("init after match end finalizes the game", func(t *testing.T) {
		log := logOf(
			initDM,
			alice,
			bob,
			"  1:00 Kill: 0 1 7: Alice killed Bob by MOD_ROCKET",
			exit,
			" 10:00 score: 1  ping: 50  client: 0 Alice",
			" 10:00 score: 0  ping: 50  client: 1 Bob",
			initDM,
			alice,
		)
		seg := segment(t, log, 1, 0.5)
		require.Len(t, seg.Games, 1)
		assert.Equal(t, 7, seg.Games[0].EndLine)
		assert.Equal(t, 7, seg.Committed)
	})

	t.Run("init while playing discards and restarts", func(t *testing.T) {
		log := logOf(
			initDM,
			alice,
			"  1:00 Kill: 0 0 7: Alice killed Alice by MOD_ROCKET",
			initDM,
			alice,
			bob,
			"  1:00 Kill: 0 1 7: Alice killed Bob by MOD_ROCKET",
			exit,
			" 10:00 score: 1  ping: 50  client: 0 Alice",
			shutdown,
		)
		seg := segment(t, log, 1, 0.5)
		require.Len(t, seg.Games, 1)
		assert.Equal(t, 1, seg.Discarded)
		assert.Equal(t, 2, seg.Games[0].Number)
		assert.Equal(t, 4, seg.Games[0].StartLine)
		assert.Zero(t, byNick(Extract(seg.Games[0]))["Alice"].Suicides)
	})
}

func TestEventsAfterMatchEnd(t *testing.T) {
	log := logOf(
		initDM,
		alice,
		bob,
		"  1:00 Kill: 0 1 7: Alice killed Bob by MOD_ROCKET",
		exit,
		" 10:01 Kill: 1 0 7: Bob killed Alice by MOD_ROCKET",
		" 10:01 Award: 1 2: Bob gained the EXCELLENT award!",
		" 10:01 say: Bob: gg",
		" 10:01 score: 1  ping: 50  client: 0 Alice",
		" 10:01 score: 0  ping: 50  client: 1 Bob",
		shutdown,
	)
	seg := segment(t, log, 1, 0.5)
	require.Len(t, seg.Games, 1)

	players := byNick(Extract(seg.Games[0]))
	assert.Zero(t, players["Bob"].Frags)
	assert.Equal(t, stats.Awards{}, players["Bob"].Awards)
	assert.Equal(t, []stats.Quote{{Speaker: "Bob", Text: "gg"}}, seg.Games[0].Quotes.Sorted())
}

func TestScoreboardBeforeMatchEnd(t *testing.T) {
	log := logOf(
		initDM,
		`  0:00 ClientUserinfoChanged: 0 n\Alice\t\0`,
		`  4:00 ClientUserinfoChanged: 1 n\Bob\t\0`,
		"  5:00 Kill: 0 1 7: Alice killed Bob by MOD_ROCKET",
		" 10:00 score: 1  ping: 50  client: 0 Alice",
		" 10:00 score: 0  ping: 50  client: 1 Bob",
		exit,
		shutdown,
	)
	seg := segment(t, log, 1, 0.5)
	require.Len(t, seg.Games, 1)
	assert.Equal(t, []string{"Alice", "Bob"}, seg.Games[0].Valid())
}

func TestClientIDReuse(t *testing.T) {
	log := logOf(
		initDM,
		alice,
		bob,
		"  1:00 Kill: 1 0 10: Bob killed Alice by MOD_RAILGUN",
		`  1:10 ClientUserinfoChanged: 1 n\Carl\t\0`,
		"  1:20 Kill: 1 0 10: Carl killed Alice by MOD_RAILGUN",
		exit,
		" 10:00 score: 1  ping: 50  client: 1 Carl",
		" 10:00 score: 1  ping: 50  client: 3 Bob",
		" 10:00 score: 0  ping: 50  client: 0 Alice",
		shutdown,
	)
	seg := segment(t, log, 1, 0.5)
	require.Len(t, seg.Games, 1)

	players := byNick(Extract(seg.Games[0]))
	assert.Equal(t, 1, players["Bob"].Frags)
	assert.Equal(t, 1, players["Carl"].Frags)
	assert.Equal(t, 2, players["Alice"].Deaths)
}

func TestDroppedEvents(t *testing.T) {
	log := logOf(
		initDM,
		alice,
		bob,
		"  1:00 Kill: 0 1 26: Alice killed Bob by MOD_KAMIKAZE",
		"  1:10 Kill: 7 1 10: Ghost killed Bob by MOD_RAILGUN",
		"  1:20 Kill: 0 1 10: Alice killed Bob",
		"  1:30 CTF: 9 1 0: Nobody got the flag!",
		"  1:40 Kill: 0 1 10: Alice killed Bob by MOD_RAILGUN",
		exit,
		" 10:00 score: 1  ping: 50  client: 0 Alice",
		" 10:00 score: 0  ping: 50  client: 1 Bob",
		shutdown,
	)
	seg := segment(t, log, 1, 0.5)
	require.Len(t, seg.Games, 1)
	assert.Equal(t, 3, seg.Dropped)

	players := byNick(Extract(seg.Games[0]))
	assert.Equal(t, 1, players["Alice"].Frags)
	assert.Equal(t, 2, players["Bob"].Deaths)
	assert.Equal(t, 2, seg.Games[0].Frags)
}

func TestUnslottedWeaponKill(t *testing.T) {
	log := logOf(
		initDM,
		alice,
		bob,
		"  1:00 Kill: 0 1 7: Alice killed Bob by MOD_ROCKET",
		"  2:00 Kill: 0 1 26: Alice killed Bob by MOD_KAMIKAZE",
		"  3:00 Kill: 0 1 29: Alice killed Bob by MOD_PROXIMITY_MINE",
		"  4:00 Kill: 0 1 30: Alice killed Bob by MOD_JUICED",
		"  5:00 Kill: 0 1 32: Alice killed Bob by MOD_GRAPPLE",
		exit,
		" 10:00 score: 5  ping: 50  client: 0 Alice",
		" 10:00 score: 0  ping: 70  client: 1 Bob",
		shutdown,
	)
	seg := segment(t, log, 1, 0.5)
	require.Len(t, seg.Games, 1)
	assert.Zero(t, seg.Dropped)

	rec := seg.Games[0]
	assert.Equal(t, 5, rec.Frags)
	assert.Equal(t, 4, rec.Unslotted)

	players := byNick(Extract(rec))
	assert.Equal(t, 5, players["Bob"].Deaths)
	assert.Equal(t, 1, players["Alice"].Frags)
	assert.Equal(t, players["Alice"].Weapons.Sum(), players["Alice"].Frags)
	assert.Equal(t, 1, players["Alice"].Weapons[stats.Rocket])
}

func TestGameWithoutValidPlayers(t *testing.T) {
	t.Run("no scoreboard", func(t *testing.T) {
		log := logOf(
			initDM,
			alice,
			bob,
			"  1:00 Kill: 0 1 7: Alice killed Bob by MOD_ROCKET",
			"  1:30 say: Bob: where is everyone",
			exit,
			shutdown,
		)
		seg := segment(t, log, 1, 0.5)
		require.Len(t, seg.Games, 1)
		assert.Zero(t, seg.Discarded)

		rec := seg.Games[0]
		assert.Empty(t, rec.Valid())
		assert.Empty(t, Extract(rec))
		assert.Equal(t, 1, rec.Frags)
		assert.Equal(t, 599, rec.ServerTime())
		assert.Equal(t, "Frag Zone", rec.Hostname)
		assert.Equal(t, []stats.Quote{{Speaker: "Bob", Text: "where is everyone"}}, rec.Quotes.Sorted())
	})

	t.Run("nobody passes the playtime rule", func(t *testing.T) {
		log := logOf(
			initDM,
			`  0:00 ClientUserinfoChanged: 0 n\Alice\t\0`,
			"  1:00 Kill: 0 0 7: Alice killed Alice by MOD_ROCKET",
			exit,
			" 10:00 score: -1  ping: 50  client: 0 Alice",
			shutdown,
		)
		seg := segment(t, log, 1, 1)
		require.Len(t, seg.Games, 1)
		assert.Zero(t, seg.Discarded)
		assert.Empty(t, Extract(seg.Games[0]))
		assert.Equal(t, 600, seg.Games[0].ServerTime())
	})
}

func TestServerTimeCountsUnlistedPlayers(t *testing.T) {
	log := logOf(
		initDM,
		`  0:00 ClientUserinfoChanged: 3 n\Early\t\0`,
		`  2:00 ClientUserinfoChanged: 0 n\Alice\t\0`,
		`  2:30 ClientUserinfoChanged: 1 n\Bob\t\0`,
		"  3:00 Kill: 0 1 7: Alice killed Bob by MOD_ROCKET",
		exit,
		" 10:00 score: 1  ping: 50  client: 0 Alice",
		" 10:00 score: 0  ping: 50  client: 1 Bob",
		shutdown,
	)
	seg := segment(t, log, 1, 0.5)
	require.Len(t, seg.Games, 1)

	rec := seg.Games[0]
	assert.Equal(t, 600, rec.ServerTime())
	assert.Equal(t, []string{"Alice", "Bob"}, rec.Valid())
}

func TestStartLine(t *testing.T) {
	log := deathmatch() + deathmatch()

	all := segment(t, log, 1, 0.5)
	require.Len(t, all.Games, 2)
	assert.Equal(t, 26, all.Committed)

	second := segment(t, log, 14, 0.5)
	require.Len(t, second.Games, 1)
	assert.Equal(t, 15, second.Games[0].StartLine)
	assert.Equal(t, 26, second.Committed)
	assert.Equal(t, Extract(all.Games[1]), Extract(second.Games[0]))

	nothing := segment(t, log, 27, 0.5)
	assert.Empty(t, nothing.Games)
	assert.Equal(t, 26, nothing.Committed)
}

func TestCursor(t *testing.T) {
	c := NewCursor(strings.NewReader("one\r\ntwo\nthree\npartial"), 2)

	l, ok := c.Peek()
	require.True(t, ok)
	assert.Equal(t, Line{No: 2, Text: "two"}, l)

	l, ok = c.Next()
	require.True(t, ok)
	assert.Equal(t, Line{No: 2, Text: "two"}, l, "peeked line is returned by Next")

	l, ok = c.Next()
	require.True(t, ok)
	assert.Equal(t, Line{No: 3, Text: "three"}, l)

	_, ok = c.Next()
	assert.False(t, ok, "partial trailing line is held back")
	_, ok = c.Peek()
	assert.False(t, ok)
	assert.NoError(t, c.Err())
	assert.Equal(t, 3, c.LinesRead())
	assert.Equal(t, int64(len("one\r\ntwo\nthree\n")), c.BytesRead())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestRunReadError(t *testing.T) {
	_, err := Run(context.Background(), NewCursor(failingReader{}, 1), Config{Classify: classify})
	assert.EqualError(t, err, "disk on fire")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, NewCursor(strings.NewReader(deathmatch()), 1), Config{Classify: classify})
	assert.ErrorIs(t, err, context.Canceled)
}
