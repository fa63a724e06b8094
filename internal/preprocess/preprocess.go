// File path: internal/preprocess/preprocess.go
package preprocess

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Ashirvaddubey/Social-media-Rag-Agent/internal/social"
)

var (
	urlPattern        = regexp.MustCompile(`https?://\S+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	specialPattern    = regexp.MustCompile(`[^\w\s#@.,!?-]`)
	hashtagPattern    = regexp.MustCompile(`#\w+`)
	mentionPattern    = regexp.MustCompile(`@\w+`)
)

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "excellent": {}, "amazing": {}, "awesome": {},
	"fantastic": {}, "wonderful": {}, "love": {}, "like": {}, "happy": {},
	"excited": {}, "thrilled": {}, "impressed": {}, "brilliant": {},
	"perfect": {}, "outstanding": {}, "incredible": {}, "superb": {},
	"magnificent": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "horrible": {}, "hate": {},
	"dislike": {}, "angry": {}, "sad": {}, "disappointed": {},
	"frustrated": {}, "annoyed": {}, "disgusted": {}, "furious": {},
	"outraged": {}, "pathetic": {}, "useless": {}, "worthless": {},
	"disaster": {}, "failure": {},
}

// Process cleans a post's content, merges extracted hashtags and mentions
// with any already present, and assigns a lexical sentiment score. It is a
// pure function of its input and the two static word lists.
func Process(post social.Post) social.Post {
	cleaned := CleanText(post.Content)
	hashtags := mergeUnique(post.Hashtags, extractTagged(cleaned, hashtagPattern))
	mentions := mergeUnique(post.Mentions, extractTagged(cleaned, mentionPattern))
	sentiment := Sentiment(cleaned)

	out := post
	out.Content = cleaned
	out.Hashtags = hashtags
	out.Mentions = mentions
	out.Sentiment = &sentiment
	return out
}

// ProcessAll processes a batch of posts independently, preserving input
// order.
func ProcessAll(posts []social.Post) []social.Post {
	out := make([]social.Post, len(posts))
	for i, post := range posts {
		out[i] = Process(post)
	}
	return out
}

// CleanText strips URLs, collapses whitespace runs and removes characters
// outside the word/whitespace/#@.,!?- set.
func CleanText(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = specialPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Sentiment scores cleaned text in [0,1] by counting positive and negative
// vocabulary hits. Text with no sentiment-bearing words scores exactly 0.5.
func Sentiment(text string) float64 {
	var positive, negative int
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if _, ok := positiveWords[word]; ok {
			positive++
		} else if _, ok := negativeWords[word]; ok {
			negative++
		}
	}
	total := positive + negative
	if total == 0 {
		return 0.5
	}
	return float64(positive) / float64(total)
}

func extractTagged(text string, pattern *regexp.Regexp) []string {
	matches := pattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, strings.ToLower(match[1:]))
	}
	return out
}

// mergeUnique unions both lists, dropping duplicates. The result is sorted so
// repeated preprocessing of the same post is deterministic.
func mergeUnique(existing, extracted []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(extracted))
	for _, v := range existing {
		seen[strings.ToLower(v)] = struct{}{}
	}
	for _, v := range extracted {
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
