package pagination

// StopOnEmpty stops before appending a page with no items.
func StopOnEmpty[T any]() StopRule[T] {
	return func(page Page[T]) (Decision, string, error) {
		if len(page.Items) == 0 {
			return StopBefore, "empty_page", nil
		}
		return Continue, "", nil
	}
}

// StopOnRepeatedLastID stops before appending a page whose last item has the
// same identifier as the previous page's last item, which is how the
// platform signals it has stopped advancing. Only the previous page's last
// identifier is retained. Empty pages leave that state untouched.
func StopOnRepeatedLastID[T any](id func(T) (string, error)) StopRule[T] {
	var previous string
	seen := false

	return func(page Page[T]) (Decision, string, error) {
		if len(page.Items) == 0 {
			return Continue, "", nil
		}

		last, err := id(page.Items[len(page.Items)-1])
		if err != nil {
			return Continue, "", err
		}

		if seen && last == previous {
			return StopBefore, "repeated_last_id", nil
		}
		previous = last
		seen = true
		return Continue, "", nil
	}
}
