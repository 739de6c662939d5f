package settings

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotIsValueCopy(t *testing.T) {
	store := NewStore(Snapshot{LLMProvider: "ollama"})

	held := store.Snapshot()
	store.Update(func(s *Snapshot) { s.LLMProvider = "openai" })

	assert.Equal(t, "ollama", held.LLMProvider)
	assert.Equal(t, "openai", store.Snapshot().LLMProvider)
}

func TestReplaceRestoresExactState(t *testing.T) {
	store := NewStore(Snapshot{LLMProvider: "ollama", OllamaBaseURL: "http://a"})
	before := store.Snapshot()

	store.Update(func(s *Snapshot) {
		s.LLMProvider = "openai"
		s.OpenAIAPIKey = "k"
	})
	store.Replace(before)

	assert.Equal(t, before, store.Snapshot())
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	store := NewStore(Snapshot{LLMProvider: "ollama"})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = store.Snapshot()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				store.Update(func(s *Snapshot) { s.STTProvider = "vosk" })
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, "vosk", store.Snapshot().STTProvider)
}
