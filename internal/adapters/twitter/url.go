package twitter

import (
	"fmt"
	"regexp"
)

var (
	tweetURLPattern = regexp.MustCompile(`(?:twitter\.com|x\.com)/\w+/status(?:es)?/(\d+)`)
	bareIDPattern   = regexp.MustCompile(`^\d+$`)
)

// ParseTweetID extracts the numeric tweet id from a twitter.com or x.com
// status URL. A bare numeric id is accepted as-is.
func ParseTweetID(input string) (string, error) {
	if m := tweetURLPattern.FindStringSubmatch(input); len(m) > 1 {
		return m[1], nil
	}

	if bareIDPattern.MatchString(input) {
		return input, nil
	}

	return "", fmt.Errorf("not a recognizable tweet URL or id: %s", input)
}
