package classroom

import "context"

// PageFunc fetches the page identified by pageToken; the first page has an empty token.
type PageFunc[T any] func(ctx context.Context, pageToken string) (Page[T], error)

// CollectAll walks a paginated listing to its end and returns every item, in page order then within-page order.
//
// Pages are fetched one after the other since each cursor comes from the previous response.
// Any error is returned as is and the pages already fetched are discarded.
// No page limit is enforced: a listing whose cursor never ends only stops when ctx is done.
func CollectAll[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	items := make([]T, 0)
	err := walk(ctx, fetch, func(page []T) {
		items = append(items, page...)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// CountAll is CollectAll without keeping the items.
func CountAll[T any](ctx context.Context, fetch PageFunc[T]) (int, error) {
	var count int
	err := walk(ctx, fetch, func(page []T) {
		count += len(page)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func walk[T any](ctx context.Context, fetch PageFunc[T], visit func([]T)) error {
	var token string
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := fetch(ctx, token)
		if err != nil {
			return err
		}
		visit(page.Items)
		if page.NextPageToken == "" {
			return nil
		}
		token = page.NextPageToken
	}
}
