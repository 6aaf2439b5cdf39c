package manual

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ashureev/ajiwai-labs/internal/config"
	"github.com/ashureev/ajiwai-labs/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCorpus = []Chunk{
	{ID: 0, Text: "手洗いは出勤時とトイレの後に必ず行います。石けんで30秒洗ってください。"},
	{ID: 1, Text: "牛煮込みの煮込み時間は弱火で40分です。途中でアクを取ります。"},
	{ID: 2, Text: "レジ締めは閉店後に店長と二人で行います。"},
	{ID: 3, Text: "ご飯は炊き上がりから2時間を過ぎたら廃棄します。"},
	{ID: 4, Text: "クレームを受けたらまず謝罪し、すぐに店長を呼んでください。"},
}

// keywordEmbedder embeds a text as presence flags of fixed keywords.
type keywordEmbedder struct {
	keywords []string
	err      error
}

func (k keywordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if k.err != nil {
		return nil, k.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, len(k.keywords)+1)
		v[len(k.keywords)] = 0.01
		for j, kw := range k.keywords {
			if strings.Contains(t, kw) {
				v[j] = 1
			}
		}
		out[i] = v
	}
	return out, nil
}

// contextAwareCompleter answers from the system excerpt or says the
// no-record phrase, like the shop manager is told to.
type contextAwareCompleter struct {
	received []domain.Message
}

func (c *contextAwareCompleter) Complete(_ context.Context, msgs []domain.Message) (string, error) {
	c.received = msgs
	system, question := msgs[0].Content, msgs[len(msgs)-1].Content
	for _, word := range []string{"煮込み", "手洗い"} {
		if strings.Contains(question, word) && strings.Contains(system, word) {
			return "マニュアルによると" + word + "について記載があります。", nil
		}
	}
	return NoRecordPhrase, nil
}

func TestSplitterRespectsSize(t *testing.T) {
	line := strings.Repeat("あ", 120)
	text := strings.Repeat(line+"\n", 10)

	chunks := NewSplitter().Split(text)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), DefaultChunkSize)
	}
	// Four 120-rune lines plus three separators fit in 500 runes.
	assert.Equal(t, 4*120+3, utf8.RuneCountInString(chunks[0]))
	assert.Len(t, chunks, 3)
}

func TestSplitterKeepsOverlongLine(t *testing.T) {
	long := strings.Repeat("い", 700)
	chunks := NewSplitter().Split("短い行\n" + long + "\n最後")

	require.Len(t, chunks, 3)
	assert.Equal(t, "短い行", chunks[0])
	assert.Equal(t, long, chunks[1])
	assert.Equal(t, "最後", chunks[2])
}

func TestSplitterDropsBlankLines(t *testing.T) {
	chunks := Splitter{Separator: "\n", Size: 10}.Split("abc\n\n\ndef\n")
	assert.Equal(t, []string{"abc\ndef"}, chunks)
}

func TestSplitterOverlap(t *testing.T) {
	chunks := Splitter{Separator: "\n", Size: 7, Overlap: 3}.Split("aaa\nbbb\nccc")
	assert.Equal(t, []string{"aaa\nbbb", "bbb\nccc"}, chunks)
}

func TestLexicalNoMatchStillReturnsK(t *testing.T) {
	idx, err := NewLexicalIndex(testCorpus)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	chunks, err := idx.Search(context.Background(), "zzzzqqqq", 3)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{chunks[0].ID, chunks[1].ID, chunks[2].ID})
}

func TestLexicalRanksMatchFirst(t *testing.T) {
	idx, err := NewLexicalIndex(testCorpus)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	chunks, err := idx.Search(context.Background(), "煮込み時間", 3)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, 1, chunks[0].ID)
}

func TestVectorIndexRanksByCosine(t *testing.T) {
	emb := keywordEmbedder{keywords: []string{"手洗い", "煮込み", "レジ", "ご飯", "クレーム"}}
	idx, err := NewVectorIndex(context.Background(), testCorpus, emb)
	require.NoError(t, err)

	chunks, err := idx.Search(context.Background(), "レジ締めの手順は？", 3)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, 2, chunks[0].ID)
}

func TestVectorIndexHasNoCutoff(t *testing.T) {
	emb := keywordEmbedder{keywords: []string{"手洗い", "煮込み"}}
	idx, err := NewVectorIndex(context.Background(), testCorpus, emb)
	require.NoError(t, err)

	chunks, err := idx.Search(context.Background(), "宇宙旅行について", 3)
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
}

func TestVectorIndexPropagatesEmbedError(t *testing.T) {
	_, err := NewVectorIndex(context.Background(), testCorpus, keywordEmbedder{err: errors.New("quota")})
	assert.Error(t, err)
}

func TestAnswerNoRecord(t *testing.T) {
	idx, err := NewLexicalIndex(testCorpus)
	require.NoError(t, err)
	c := &contextAwareCompleter{}
	svc := NewService(idx, c, nil)

	res, err := svc.Answer(context.Background(), "有給休暇の申請方法は？")
	require.NoError(t, err)

	assert.Equal(t, NoRecordPhrase, res.Answer)
	assert.Len(t, res.Chunks, DefaultTopK)
	assert.Equal(t, 2, strings.Count(res.Context, "\n\n"))

	require.Len(t, c.received, 2)
	assert.Equal(t, domain.RoleSystem, c.received[0].Role)
	assert.Contains(t, c.received[0].Content, NoRecordPhrase)
	assert.Contains(t, c.received[0].Content, res.Context)
	assert.Equal(t, "有給休暇の申請方法は？", c.received[1].Content)
}

func TestAnswerFromContext(t *testing.T) {
	idx, err := NewLexicalIndex(testCorpus)
	require.NoError(t, err)
	svc := NewService(idx, &contextAwareCompleter{}, nil)

	res, err := svc.Answer(context.Background(), "煮込みは何分？")
	require.NoError(t, err)
	assert.Contains(t, res.Answer, "煮込み")
	assert.Contains(t, res.Context, "弱火で40分")
}

func TestAnswerRejectsEmpty(t *testing.T) {
	idx, err := NewLexicalIndex(testCorpus)
	require.NoError(t, err)
	svc := NewService(idx, &contextAwareCompleter{}, nil)

	_, err = svc.Answer(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrEmptyInput)
}

func TestBuildFailsOnMissingFile(t *testing.T) {
	_, err := Build(context.Background(), config.ManualConfig{
		Path:    filepath.Join(t.TempDir(), "missing.txt"),
		Backend: config.RetrievalLexical,
	}, nil)
	assert.Error(t, err)
}

func TestBuildVectorNeedsEmbedder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual.txt")
	require.NoError(t, os.WriteFile(path, []byte("手洗いは必ず行う\n"), 0o644))

	_, err := Build(context.Background(), config.ManualConfig{Path: path, Backend: config.RetrievalVector}, nil)
	assert.Error(t, err)

	r, err := Build(context.Background(), config.ManualConfig{Path: path, Backend: config.RetrievalLexical}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
}

func TestLoadChunksEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o644))

	_, err := LoadChunks(path)
	assert.ErrorIs(t, err, ErrEmptyManual)
}
