package radix

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

const kota = "ala ma kota a kot"

// bruteMatch returns the first occurrence and length of the longest prefix of
// buf found in w.
func bruteMatch(w, buf []byte) (offset, length int) {
	for l := len(buf); l > 0; l-- {
		if i := bytes.Index(w, buf[:l]); i >= 0 {
			return i, l
		}
	}
	return 0, 0
}

// requireAgrees compares every query the index answers against a scan of
// the window.
func requireAgrees(t *testing.T, x *Index, queries [][]byte) {
	t.Helper()
	require.NoError(t, x.Check())
	w := x.Bytes()
	for i := 0; i < len(w); i++ {
		for j := i; j <= len(w); j++ {
			off, ok := x.Locate(w[i:j])
			require.True(t, ok, "window %q, substring %q", w, w[i:j])
			require.Equal(t, bytes.Index(w, w[i:j]), off, "window %q, substring %q", w, w[i:j])
		}
	}
	for _, p := range queries {
		off, ok := x.Locate(p)
		if want := bytes.Index(w, p); want < 0 {
			require.False(t, ok, "window %q, query %q", w, p)
		} else {
			require.True(t, ok, "window %q, query %q", w, p)
			require.Equal(t, want, off, "window %q, query %q", w, p)
		}

		wantOff, wantLen := bruteMatch(w, p)
		gotOff, gotLen := x.LongestMatch(p)
		require.Equal(t, wantLen, gotLen, "window %q, lookahead %q", w, p)
		require.Equal(t, wantOff, gotOff, "window %q, lookahead %q", w, p)
	}
}

func randomBytes(rng *rand.Rand, n int, alphabet string) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return b
}

func randomQueries(rng *rand.Rand, n int, alphabet string) [][]byte {
	queries := make([][]byte, n)
	for i := range queries {
		queries[i] = randomBytes(rng, 1+rng.Intn(8), alphabet)
	}
	return queries
}

func TestBuildEmpty(t *testing.T) {
	x, err := Build(nil)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Nil(t, x)

	_, err = Build([]byte{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestKota(t *testing.T) {
	x, err := Build([]byte(kota))
	require.NoError(t, err)
	require.NoError(t, x.Check())
	require.Equal(t, 17, x.Len())

	off, ok := x.Locate([]byte("kot"))
	require.True(t, ok)
	require.Contains(t, []int{7, 14}, off)
	require.Equal(t, "kot", kota[off:off+3])

	off, n := x.LongestMatch([]byte("kota"))
	require.GreaterOrEqual(t, n, 3)
	require.Equal(t, "kota"[:n], kota[off:off+n])

	off, n = x.LongestMatch([]byte("kota ma ala"))
	require.Equal(t, 7, off)
	require.Equal(t, 5, n)

	_, n = x.LongestMatch([]byte("xyz"))
	require.Zero(t, n)

	for i := 0; i < 5; i++ {
		require.NoError(t, x.PopFront())
		require.NoError(t, x.Check())
	}
	require.Equal(t, 5, x.Start())
	require.Equal(t, "a kota a kot", string(x.Bytes()))

	_, ok = x.Locate([]byte("ala"))
	require.False(t, ok)

	off, ok = x.Locate([]byte("kot"))
	require.True(t, ok)
	require.Equal(t, 2, off)
}

func TestBuildCoversAllSubstrings(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, seed := range []string{"a", "aaaa", "abab", "aab", "mississippi", kota, "abcabxabcd"} {
		x, err := Build([]byte(seed))
		require.NoError(t, err)
		requireAgrees(t, x, randomQueries(rng, 20, "abcimps kot"))
	}
	for i := 0; i < 50; i++ {
		seed := randomBytes(rng, 1+rng.Intn(40), "ab")
		x, err := Build(seed)
		require.NoError(t, err)
		requireAgrees(t, x, randomQueries(rng, 10, "ab"))
	}
}

func TestPushBackFromEmpty(t *testing.T) {
	x := New()
	require.Zero(t, x.Len())
	require.NoError(t, x.Check())

	_, ok := x.Locate(nil)
	require.False(t, ok)
	_, n := x.LongestMatch([]byte("a"))
	require.Zero(t, n)

	for _, c := range []byte("abracadabra") {
		x.PushBack(c)
		requireAgrees(t, x, [][]byte{[]byte("abra"), []byte("cad"), []byte("dab"), []byte("z")})
	}
	require.Equal(t, "abracadabra", string(x.Bytes()))
}

func TestPopFrontEmpty(t *testing.T) {
	x := New()
	require.ErrorIs(t, x.PopFront(), ErrEmptyWindow)

	x, err := Build([]byte("ab"))
	require.NoError(t, err)
	require.NoError(t, x.PopFront())
	require.NoError(t, x.PopFront())
	require.NoError(t, x.Check())
	require.ErrorIs(t, x.PopFront(), ErrEmptyWindow)

	// An emptied window can be refilled.
	x.PushBack('b')
	x.PushBack('a')
	requireAgrees(t, x, [][]byte{[]byte("ab"), []byte("ba")})
	require.Equal(t, 2, x.Start())
	require.Equal(t, 4, x.End())
}

// A slid index must answer exactly like one built from the same window.
func TestSlidingEquivalence(t *testing.T) {
	for _, alphabet := range []string{"a", "ab", "abc", "acgt"} {
		rng := rand.New(rand.NewSource(int64(len(alphabet))))
		seed := randomBytes(rng, 12, alphabet)
		x, err := Build(seed)
		require.NoError(t, err)

		for step := 0; step < 200; step++ {
			if x.Len() > 0 && (x.Len() > 24 || rng.Intn(3) == 0) {
				require.NoError(t, x.PopFront())
			} else {
				x.PushBack(alphabet[rng.Intn(len(alphabet))])
			}
			queries := randomQueries(rng, 8, alphabet)
			requireAgrees(t, x, queries)

			if x.Len() == 0 {
				continue
			}
			fresh, err := Build(x.Bytes())
			require.NoError(t, err)
			for _, p := range queries {
				gotOff, gotOK := x.Locate(p)
				wantOff, wantOK := fresh.Locate(p)
				require.Equal(t, wantOK, gotOK)
				require.Equal(t, wantOff, gotOff)

				gotOff, gotLen := x.LongestMatch(p)
				wantOff, wantLen := fresh.LongestMatch(p)
				require.Equal(t, wantLen, gotLen)
				require.Equal(t, wantOff, gotOff)
			}
		}
	}
}

func TestWindowTrim(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	x := New()
	data := randomBytes(rng, 3*minTrim, "abcd")
	for i, c := range data {
		x.PushBack(c)
		if x.Len() > 16 {
			require.NoError(t, x.PopFront())
		}
		if i%1000 == 0 {
			require.NoError(t, x.Check())
		}
	}
	require.NoError(t, x.Check())
	require.Equal(t, data[len(data)-16:], x.Bytes())
	require.Less(t, len(x.window), 2*minTrim+16)
}

func TestCheckDetectsCorruption(t *testing.T) {
	// "abcabd" has internal nodes "ab" and "b", each over leaves "cabd" and
	// "d".
	for _, tc := range []struct {
		name    string
		corrupt func(x *Index)
	}{
		{"offset missing from parent", func(x *Index) {
			x.root.children['a'].support.Insert(99)
		}},
		{"siblings share first byte", func(x *Index) {
			x.root.children['a'].label = []byte("bb")
		}},
		{"single child", func(x *Index) {
			delete(x.root.children['a'].children, 'd')
		}},
		{"stale parent", func(x *Index) {
			x.root.children['a'].children['c'].parent = x.root
		}},
		{"wrong depth", func(x *Index) {
			x.root.children['b'].depth = 5
		}},
		{"empty support", func(x *Index) {
			x.root.children['b'].children['d'].support.Empty()
		}},
		{"unique suffix marked repeated", func(x *Index) {
			x.active = 0
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			x, err := Build([]byte("abcabd"))
			require.NoError(t, err)
			require.NoError(t, x.Check())
			require.False(t, x.root.children['a'].isLeaf())
			require.False(t, x.root.children['b'].isLeaf())

			tc.corrupt(x)
			require.ErrorIs(t, x.Check(), ErrCorruptIndex)
		})
	}
}

// Pushing a byte walks only the suffixes that occur earlier in the window,
// so a large window of varied data slides cheaply.
func TestPushBackWalksRepeatedSuffixes(t *testing.T) {
	const window = 1 << 14
	rng := rand.New(rand.NewSource(3))
	data := randomBytes(rng, 2*window, "abcdefghijklmnop")
	x := New()
	for _, c := range data {
		x.PushBack(c)
		if x.Len() > window {
			require.NoError(t, x.PopFront())
		}
		// end-active suffixes plus the new one are walked per push.
		require.LessOrEqual(t, x.End()-int(x.active), 12)
	}
	require.NoError(t, x.Check())
	require.Equal(t, data[len(data)-window:], x.Bytes())
}

func TestRunOfOneByte(t *testing.T) {
	x := New()
	for i := 0; i < 300; i++ {
		x.PushBack('a')
		if x.Len() > 100 {
			require.NoError(t, x.PopFront())
		}
	}
	require.NoError(t, x.Check())
	off, n := x.LongestMatch(bytes.Repeat([]byte("a"), 150))
	require.Equal(t, 0, off)
	require.Equal(t, 100, n)
	// Every suffix but the whole window repeats.
	require.Equal(t, x.Start()+1, int(x.active))
}

func benchmarkSlide(b *testing.B, window int) {
	rng := rand.New(rand.NewSource(1))
	data := randomBytes(rng, 1<<16, "abcdefghijklmnopqrstuvwxyz ")
	x := New()
	for _, c := range data[:window] {
		x.PushBack(c)
	}
	b.SetBytes(1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := x.PopFront(); err != nil {
			b.Fatal(err)
		}
		x.PushBack(data[(window+i)%len(data)])
	}
}

func BenchmarkSlide1K(b *testing.B) { benchmarkSlide(b, 1<<10) }
func BenchmarkSlide16K(b *testing.B) { benchmarkSlide(b, 1<<14) }
func BenchmarkSlide64K(b *testing.B) { benchmarkSlide(b, 1<<16-1) }
