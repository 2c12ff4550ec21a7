package extract

import (
	"sync"

	"go.elara.ws/pcre"
)

// regexCache caches compiled expressions so the pattern tables compile
// once per process.
type regexCache struct {
	compiled map[string]*pcre.Regexp
	mutex    sync.RWMutex
}

func newRegexCache() *regexCache {
	return &regexCache{
		compiled: make(map[string]*pcre.Regexp),
	}
}

func (rc *regexCache) get(pattern string) (*pcre.Regexp, error) {
	rc.mutex.RLock()
	if regex, exists := rc.compiled[pattern]; exists {
		rc.mutex.RUnlock()
		return regex, nil
	}
	rc.mutex.RUnlock()

	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	// Double-check pattern
	if regex, exists := rc.compiled[pattern]; exists {
		return regex, nil
	}

	regex, err := pcre.Compile(pattern)
	if err != nil {
		return nil, err
	}
	rc.compiled[pattern] = regex
	return regex, nil
}

var sharedCache = newRegexCache()

// matchPattern reports whether pattern matches text. Invalid patterns
// never match.
func matchPattern(pattern, text string) bool {
	regex, err := sharedCache.get(pattern)
	if err != nil {
		return false
	}
	return regex.MatchString(text)
}

// MatchPattern is the exported form of matchPattern for sibling
// packages that share the compiled pattern cache.
func MatchPattern(pattern, text string) bool {
	return matchPattern(pattern, text)
}

// findSubmatch returns capture groups for the first match, nil when the
// pattern does not match.
func findSubmatch(pattern, text string) []string {
	regex, err := sharedCache.get(pattern)
	if err != nil {
		return nil
	}
	// pcre returns an empty slice rather than nil when nothing matches.
	m := regex.FindStringSubmatch(text)
	if len(m) == 0 {
		return nil
	}
	return m
}
