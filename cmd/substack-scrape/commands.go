package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Sternrassler/substack-client/pkg/client"
	"github.com/Sternrassler/substack-client/pkg/newsletter"
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	defaults := client.DefaultEndpoints()

	root := &cobra.Command{
		Use:           "substack-scrape",
		Short:         "Collects categories, newsletters, posts and user data as JSON.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.redisURL, "redis", getEnv("REDIS_URL", ""), "Redis address for the response cache (empty disables caching)")
	flags.StringVar(&a.logLevel, "log-level", getEnv("LOG_LEVEL", "warn"), "Log level: debug, info, warn, error")
	flags.BoolVar(&a.pretty, "pretty", false, "Human-readable log output")
	flags.BoolVar(&a.showMetrics, "metrics", false, "Print a metrics summary to stderr on exit")
	flags.StringVar(&a.userAgent, "user-agent", client.DefaultUserAgent, "User-Agent header")
	flags.StringVar(&a.root, "root", defaults.Root, "Platform API root URL")
	flags.StringVar(&a.newsletterFormat, "newsletter-format", defaults.NewsletterFormat, "Newsletter base URL with %s for the subdomain")

	root.AddCommand(
		categoriesCmd(a),
		categoryNameCmd(a),
		categoryIDCmd(a),
		newslettersCmd(a),
		postsCmd(a),
		postCmd(a),
		recommendationsCmd(a),
		userCmd(a),
	)
	return root
}

func categoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := a.newsletters.Categories(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, categories)
		},
	}
}

func categoryNameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "category-name <id>",
		Short: "Print the name of a category id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			name, err := a.newsletters.CategoryIDToName(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd, name)
		},
	}
}

func categoryIDCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "category-id <name>",
		Short: "Print the id of a category name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.newsletters.CategoryNameToID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, id)
		},
	}
}

func newslettersCmd(a *app) *cobra.Command {
	var (
		pages      newsletter.Range
		subdomains bool
	)

	cmd := &cobra.Command{
		Use:   "newsletters <category-id>",
		Short: "List newsletters in a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if subdomains {
				names, err := a.newsletters.NewsletterSubdomainsInCategory(cmd.Context(), id, pages)
				if err != nil {
					return err
				}
				return printJSON(cmd, names)
			}
			pubs, err := a.newsletters.NewslettersInCategory(cmd.Context(), id, pages)
			if err != nil {
				return err
			}
			return printJSON(cmd, pubs)
		},
	}
	cmd.Flags().IntVar(&pages.Start, "start", 0, "First page")
	cmd.Flags().IntVar(&pages.End, "end", 0, "Stop before this page (0: until the platform runs out)")
	cmd.Flags().BoolVar(&subdomains, "subdomains", false, "Print publication ids only")
	return cmd
}

func postsCmd(a *app) *cobra.Command {
	var (
		offsets newsletter.Range
		slugs   bool
	)

	cmd := &cobra.Command{
		Use:   "posts <subdomain>",
		Short: "List a newsletter's post archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if slugs {
				s, err := a.newsletters.PostSlugs(cmd.Context(), args[0], offsets)
				if err != nil {
					return err
				}
				return printJSON(cmd, s)
			}
			posts, err := a.newsletters.PostMetadata(cmd.Context(), args[0], offsets)
			if err != nil {
				return err
			}
			return printJSON(cmd, posts)
		},
	}
	cmd.Flags().IntVar(&offsets.Start, "start", 0, "First offset")
	cmd.Flags().IntVar(&offsets.End, "end", 0, "Stop before this offset (0: whole archive)")
	cmd.Flags().BoolVar(&slugs, "slugs", false, "Print slugs only")
	return cmd
}

func postCmd(a *app) *cobra.Command {
	var html bool

	cmd := &cobra.Command{
		Use:   "post <subdomain> <slug>",
		Short: "Print one post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if html {
				body, err := a.newsletters.PostHTML(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(cmd, body)
			}
			post, err := a.newsletters.PostContents(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd, post)
		},
	}
	cmd.Flags().BoolVar(&html, "html", false, "Print body_html only")
	return cmd
}

func recommendationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recommendations <subdomain>",
		Short: "List newsletters recommended by a newsletter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.newsletters.Recommendations(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, recs)
		},
	}
}

func userCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Look up a user's public profile",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "id <handle>",
			Short: "Print a user's numeric id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := a.users.ID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, id)
			},
		},
		&cobra.Command{
			Use:   "reads <handle>",
			Short: "List the newsletters a user reads",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				reads, err := a.users.Reads(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, reads)
			},
		},
		&cobra.Command{
			Use:   "likes <user-id>",
			Short: "List a user's liked items",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				items, err := a.users.Likes(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd, items)
			},
		},
		&cobra.Command{
			Use:   "notes <user-id>",
			Short: "List a user's notes",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				items, err := a.users.Notes(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd, items)
			},
		},
	)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
