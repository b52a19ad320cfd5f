package session

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/jtg86/mbxadmin/internal/directory"
)

// searchBuckets defines the fixed merge order of search results. The static
// group bucket queries both group recipient types in one remote call; the
// decoded records carry the final classification.
var searchBuckets = [][]directory.Kind{
	{directory.KindSharedMailbox},
	{directory.KindRoomMailbox},
	{directory.KindEquipmentMailbox},
	{directory.KindDistributionGroup, directory.KindMailSecurityGroup},
	{directory.KindDynamicDistributionGroup},
}

// Search returns directory objects matching text, merged across kinds in the
// fixed bucket order with no relevance ranking. Text shorter than the minimum
// returns empty immediately with no remote call or cache interaction. Results
// are memoized by the trimmed text; a bucket whose query fails contributes
// nothing and is logged as a warning, while a connection failure aborts the
// whole search and is not cached.
func (s *Session) Search(ctx context.Context, text string) ([]ObjectRef, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < s.minLen {
		return nil, nil
	}

	return s.searches.GetOrCompute(text, func() ([]ObjectRef, error) {
		return s.runSearch(ctx, text)
	})
}

func (s *Session) runSearch(ctx context.Context, text string) ([]ObjectRef, error) {
	results := make([][]directory.Recipient, len(searchBuckets))
	errs := make([]error, len(searchBuckets))

	// The per-bucket queries are independent; run them concurrently and
	// merge only after every one has completed or failed.
	var wg sync.WaitGroup
	for i, kinds := range searchBuckets {
		wg.Add(1)
		go func(i int, kinds []directory.Kind) {
			defer wg.Done()
			results[i], errs[i] = s.dir.SearchRecipients(ctx, kinds, text, s.cap)
		}(i, kinds)
	}
	wg.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		if directory.IsConnection(err) {
			s.aud.Error("search", text, "directory connection lost during search", err)
			return nil, err
		}
		s.aud.Warn("search", text, "", bucketName(searchBuckets[i])+" query failed", err)
	}

	var merged []ObjectRef
	for _, bucket := range results {
		for _, r := range bucket {
			merged = append(merged, ObjectRef{
				Kind:           r.Kind,
				DisplayName:    r.DisplayName,
				PrimaryEmail:   r.PrimarySMTP,
				RemoteIdentity: r.Identity,
			})
		}
	}
	return merged, nil
}

func bucketName(kinds []directory.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, "/")
}
