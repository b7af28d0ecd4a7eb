// events-cli is the terminal event console: a paginated, sortable, searchable
// list view plus create/edit/delete against a running events API.
package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"events-app/internal/console"
	"events-app/internal/eventclient"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "events-cli",
		Usage: "Browse and manage events from the terminal.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Value:   "http://localhost:8080",
				Usage:   "Base URL of the events API.",
				EnvVars: []string{"EVENTS_API_URL"},
			},
		},
		Commands: []*cli.Command{
			listCommand(),
			getCommand(),
			createCommand(),
			updateCommand(),
			deleteCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func client(c *cli.Context) *eventclient.Client {
	return eventclient.New(c.String("api"))
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Show one page of events.",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Value: 1},
			&cli.IntFlag{Name: "limit", Value: 5},
			&cli.StringFlag{Name: "search", Usage: "Filter by name substring."},
			&cli.StringFlag{Name: "sort-by", Value: "id", Usage: "One of id, name, startDate, endDate."},
			&cli.StringFlag{Name: "sort-order", Value: "DESC", Usage: "ASC or DESC."},
		},
		Action: func(c *cli.Context) error {
			page, err := client(c).List(c.Context, eventclient.ListOptions{
				Page:      c.Int("page"),
				Limit:     c.Int("limit"),
				Search:    c.String("search"),
				SortBy:    c.String("sort-by"),
				SortOrder: c.String("sort-order"),
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTART\tEND\tIMAGE")
			for _, event := range page.Data {
				image := "-"
				if event.ImageURL != nil {
					image = *event.ImageURL
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					event.ID, event.Name,
					console.FormatDate(event.StartDate.String()),
					console.FormatDate(event.EndDate.String()),
					image)
			}
			w.Flush()

			fmt.Printf("\n%d record(s), page %d of %d: %s\n",
				page.Pagination.TotalRecords, c.Int("page"), page.Pagination.TotalPages,
				renderPageBar(c.Int("page"), page.Pagination.TotalPages))
			return nil
		},
	}
}

// renderPageBar draws the windowed pagination control, e.g. "1 … 4 [5] 6 … 12".
func renderPageBar(current, totalPages int) string {
	var parts []string
	for _, item := range console.PageNumbers(current, totalPages) {
		switch {
		case item.Ellipsis:
			parts = append(parts, "…")
		case item.Number == current:
			parts = append(parts, fmt.Sprintf("[%d]", item.Number))
		default:
			parts = append(parts, fmt.Sprintf("%d", item.Number))
		}
	}
	return strings.Join(parts, " ")
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show a single event.",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return err
			}
			event, err := client(c).Get(c.Context, id)
			if err != nil {
				return err
			}

			fmt.Printf("ID:          %d\n", event.ID)
			fmt.Printf("Name:        %s\n", event.Name)
			fmt.Printf("Description: %s\n", event.Description)
			fmt.Printf("Start:       %s\n", console.FormatDate(event.StartDate.String()))
			fmt.Printf("End:         %s\n", console.FormatDate(event.EndDate.String()))
			if event.ImageURL != nil {
				fmt.Printf("Image:       %s\n", *event.ImageURL)
			}
			return nil
		},
	}
}

func draftFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringFlag{Name: "description", Required: true},
		&cli.StringFlag{Name: "start", Required: true, Usage: "Start date, YYYY-MM-DD."},
		&cli.StringFlag{Name: "end", Required: true, Usage: "End date, YYYY-MM-DD."},
		&cli.StringFlag{Name: "image", Usage: "Path of an image file to attach."},
	}
}

// draftFromFlags runs the console-side validation before anything touches the
// network, matching what the browser form did.
func draftFromFlags(c *cli.Context) (eventclient.Draft, string, error) {
	draft := console.Draft{
		Name:        c.String("name"),
		Description: c.String("description"),
		StartDate:   c.String("start"),
		EndDate:     c.String("end"),
		ImagePath:   c.String("image"),
	}
	if problems := console.ValidateDraft(draft); len(problems) > 0 {
		for _, msg := range problems {
			fmt.Fprintln(os.Stderr, msg)
		}
		return eventclient.Draft{}, "", fmt.Errorf("draft is not valid")
	}
	return eventclient.Draft{
		Name:        draft.Name,
		Description: draft.Description,
		StartDate:   draft.StartDate,
		EndDate:     draft.EndDate,
	}, draft.ImagePath, nil
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create an event.",
		Flags: draftFlags(),
		Action: func(c *cli.Context) error {
			draft, imagePath, err := draftFromFlags(c)
			if err != nil {
				return err
			}
			event, err := client(c).Create(c.Context, draft, imagePath)
			if err != nil {
				return err
			}
			fmt.Printf("Created event %d\n", event.ID)
			return nil
		},
	}
}

func updateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Overwrite an event. All fields are required; the image is replaced only when --image is given.",
		ArgsUsage: "<id>",
		Flags:     draftFlags(),
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return err
			}
			draft, imagePath, err := draftFromFlags(c)
			if err != nil {
				return err
			}
			event, err := client(c).Update(c.Context, id, draft, imagePath)
			if err != nil {
				return err
			}
			fmt.Printf("Updated event %d\n", event.ID)
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an event and its image.",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c)
			if err != nil {
				return err
			}
			if err := client(c).Delete(c.Context, id); err != nil {
				return err
			}
			fmt.Printf("Deleted event %d\n", id)
			return nil
		},
	}
}

func idArg(c *cli.Context) (int64, error) {
	if c.Args().Len() != 1 {
		return 0, fmt.Errorf("expected exactly one <id> argument")
	}
	var id int64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &id); err != nil {
		return 0, fmt.Errorf("invalid id %q", c.Args().First())
	}
	return id, nil
}
