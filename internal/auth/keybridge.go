package auth

import "sync"

// KeyBridge holds the generation API key of the most recently authenticated
// user. Whichever of login, register, or session restore succeeded last is
// the writer; the generation client reads the key at call time and never
// caches it, so a new login takes effect on the next request.
type KeyBridge struct {
	mu  sync.RWMutex
	key string
}

func NewKeyBridge() *KeyBridge {
	return &KeyBridge{}
}

func (b *KeyBridge) Set(key string) {
	b.mu.Lock()
	b.key = key
	b.mu.Unlock()
}

// APIKey satisfies generator.CredentialSource.
func (b *KeyBridge) APIKey() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.key
}
