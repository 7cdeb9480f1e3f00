package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-trainer/internal/domain"
	"github.com/phrazzld/scry-trainer/internal/service"
	"github.com/phrazzld/scry-trainer/internal/store"
	"github.com/spf13/pflag"
)

const timeLayout = time.RFC3339

// dispatch routes args to a command.
func (a *application) dispatch(ctx context.Context, args []string, out io.Writer) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "migrate":
		return a.migrate(ctx, rest, out)
	case "deck":
		return a.deckCommand(ctx, rest, out)
	case "card":
		return a.cardCommand(ctx, rest, out)
	case "due":
		return a.due(ctx, rest, out)
	case "review":
		return a.review(ctx, rest, out)
	case "preview":
		return a.preview(ctx, rest, out)
	case "postpone":
		return a.postpone(ctx, rest, out)
	case "reschedule":
		return a.reschedule(ctx, rest, out)
	case "history":
		return a.history(ctx, rest, out)
	default:
		return usagef("unknown command %q", cmd)
	}
}

// parseFlags parses command flags and checks the positional argument count.
func parseFlags(name string, args []string, positional int, define func(fs *pflag.FlagSet)) ([]string, error) {
	return parseFlagsRange(name, args, positional, positional, define)
}

// parseFlagsRange is parseFlags for commands taking between minArgs and
// maxArgs positional arguments.
func parseFlagsRange(
	name string,
	args []string,
	minArgs, maxArgs int,
	define func(fs *pflag.FlagSet),
) ([]string, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if define != nil {
		define(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, usagef("%s: %v", name, err)
	}
	if n := fs.NArg(); n < minArgs || n > maxArgs {
		if minArgs == maxArgs {
			return nil, usagef("%s: expected %d argument(s), got %d", name, minArgs, n)
		}
		return nil, usagef("%s: expected %d to %d argument(s), got %d", name, minArgs, maxArgs, n)
	}
	return fs.Args(), nil
}

func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, usagef("invalid %s id %q", kind, raw)
	}
	return id, nil
}

func listOptions(limit int, sort string) store.ListOptions {
	return store.ListOptions{Limit: limit, Sort: store.ParseSort(sort)}
}

func (a *application) deckCommand(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usagef("deck: missing subcommand")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "create":
		var description string
		pos, err := parseFlags("deck create", rest, 1, func(fs *pflag.FlagSet) {
			fs.StringVar(&description, "description", "", "deck description")
		})
		if err != nil {
			return err
		}
		deck, err := a.deckService.CreateDeck(ctx, service.DeckInput{Name: pos[0], Description: description})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, deck.ID)
		return nil

	case "list":
		var limit int
		var sort string
		if _, err := parseFlags("deck list", rest, 0, func(fs *pflag.FlagSet) {
			fs.IntVar(&limit, "limit", 0, "maximum number of decks")
			fs.StringVar(&sort, "sort", "", "sort field, prefix with - for descending")
		}); err != nil {
			return err
		}
		decks, err := a.deckService.ListDecks(ctx, listOptions(limit, sort))
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCREATED")
		for _, d := range decks {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Name, d.CreatedAt.Format(timeLayout))
		}
		return w.Flush()

	case "update":
		var flags *pflag.FlagSet
		var name, description string
		pos, err := parseFlags("deck update", rest, 1, func(fs *pflag.FlagSet) {
			flags = fs
			fs.StringVar(&name, "name", "", "new deck name")
			fs.StringVar(&description, "description", "", "new deck description")
		})
		if err != nil {
			return err
		}
		if !flags.Changed("name") && !flags.Changed("description") {
			return usagef("deck update: nothing to change, pass --name or --description")
		}
		deckID, err := parseID("deck", pos[0])
		if err != nil {
			return err
		}
		deck, err := a.deckService.GetDeck(ctx, deckID)
		if err != nil {
			return err
		}
		input := service.DeckInput{Name: deck.Name, Description: deck.Description}
		if flags.Changed("name") {
			input.Name = name
		}
		if flags.Changed("description") {
			input.Description = description
		}
		if _, err := a.deckService.UpdateDeck(ctx, deckID, input); err != nil {
			return err
		}
		fmt.Fprintf(out, "updated deck %s\n", deckID)
		return nil

	case "delete":
		pos, err := parseFlags("deck delete", rest, 1, nil)
		if err != nil {
			return err
		}
		deckID, err := parseID("deck", pos[0])
		if err != nil {
			return err
		}
		if err := a.deckService.DeleteDeck(ctx, deckID); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted deck %s\n", deckID)
		return nil

	default:
		return usagef("deck: unknown subcommand %q", sub)
	}
}

func (a *application) cardCommand(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return usagef("card: missing subcommand")
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "add":
		var input service.CardInput
		pos, err := parseFlags("card add", rest, 1, func(fs *pflag.FlagSet) {
			fs.StringVar(&input.Front, "front", "", "question side")
			fs.StringVar(&input.Back, "back", "", "answer side")
			fs.StringSliceVar(&input.Tags, "tags", nil, "comma separated tags")
		})
		if err != nil {
			return err
		}
		deckID, err := parseID("deck", pos[0])
		if err != nil {
			return err
		}
		card, err := a.cardService.CreateCard(ctx, deckID, input)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, card.ID)
		return nil

	case "list":
		var limit int
		var sort string
		pos, err := parseFlags("card list", rest, 1, func(fs *pflag.FlagSet) {
			fs.IntVar(&limit, "limit", 0, "maximum number of cards")
			fs.StringVar(&sort, "sort", "", "sort field, prefix with - for descending")
		})
		if err != nil {
			return err
		}
		deckID, err := parseID("deck", pos[0])
		if err != nil {
			return err
		}
		cards, err := a.cardService.ListCards(ctx, deckID, listOptions(limit, sort))
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tFRONT\tTAGS")
		for _, c := range cards {
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, oneLine(c.Front), strings.Join(c.Tags, ","))
		}
		return w.Flush()

	case "show":
		pos, err := parseFlags("card show", rest, 1, nil)
		if err != nil {
			return err
		}
		cardID, err := parseID("card", pos[0])
		if err != nil {
			return err
		}
		card, err := a.cardService.GetCard(ctx, cardID)
		if err != nil {
			return err
		}
		schedule, err := a.cardService.GetCardSchedule(ctx, cardID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "front: %s\nback:  %s\n", card.Front, card.Back)
		printSchedule(out, schedule)
		return nil

	case "update":
		var flags *pflag.FlagSet
		var changes service.CardInput
		pos, err := parseFlags("card update", rest, 1, func(fs *pflag.FlagSet) {
			flags = fs
			fs.StringVar(&changes.Front, "front", "", "new question side")
			fs.StringVar(&changes.Back, "back", "", "new answer side")
			fs.StringSliceVar(&changes.Tags, "tags", nil, "comma separated tags, replacing the current ones")
		})
		if err != nil {
			return err
		}
		if !flags.Changed("front") && !flags.Changed("back") && !flags.Changed("tags") {
			return usagef("card update: nothing to change, pass --front, --back or --tags")
		}
		cardID, err := parseID("card", pos[0])
		if err != nil {
			return err
		}
		card, err := a.cardService.GetCard(ctx, cardID)
		if err != nil {
			return err
		}
		input := service.CardInput{Front: card.Front, Back: card.Back, Tags: card.Tags}
		if flags.Changed("front") {
			input.Front = changes.Front
		}
		if flags.Changed("back") {
			input.Back = changes.Back
		}
		if flags.Changed("tags") {
			input.Tags = changes.Tags
		}
		if _, err := a.cardService.UpdateCard(ctx, cardID, input); err != nil {
			return err
		}
		fmt.Fprintf(out, "updated card %s\n", cardID)
		return nil

	case "delete":
		pos, err := parseFlags("card delete", rest, 1, nil)
		if err != nil {
			return err
		}
		cardID, err := parseID("card", pos[0])
		if err != nil {
			return err
		}
		if err := a.cardService.DeleteCard(ctx, cardID); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted card %s\n", cardID)
		return nil

	default:
		return usagef("card: unknown subcommand %q", sub)
	}
}

func (a *application) due(ctx context.Context, args []string, out io.Writer) error {
	var limit int
	if _, err := parseFlags("due", args, 0, func(fs *pflag.FlagSet) {
		fs.IntVar(&limit, "limit", 20, "maximum number of cards")
	}); err != nil {
		return err
	}

	due, err := a.reviewService.DueCards(ctx, limit)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		fmt.Fprintln(out, "nothing due")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CARD\tSTATE\tDUE\tFRONT")
	for _, d := range due {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			d.Card.ID, d.Schedule.State, d.Schedule.Due.Format(timeLayout), oneLine(d.Card.Front))
	}
	return w.Flush()
}

func (a *application) review(ctx context.Context, args []string, out io.Writer) error {
	var duration time.Duration
	pos, err := parseFlags("review", args, 2, func(fs *pflag.FlagSet) {
		fs.DurationVar(&duration, "duration", 0, "time spent answering")
	})
	if err != nil {
		return err
	}
	cardID, err := parseID("card", pos[0])
	if err != nil {
		return err
	}
	rating, err := domain.ParseRating(pos[1])
	if err != nil {
		return err
	}

	result, err := a.reviewService.SubmitReview(ctx, cardID, rating, duration)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "rated %s: %s, next due %s\n",
		rating, result.Schedule.State, result.Schedule.Due.Format(timeLayout))
	return nil
}

func (a *application) preview(ctx context.Context, args []string, out io.Writer) error {
	pos, err := parseFlags("preview", args, 1, nil)
	if err != nil {
		return err
	}
	cardID, err := parseID("card", pos[0])
	if err != nil {
		return err
	}

	preview, err := a.reviewService.PreviewCard(ctx, cardID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "retrievability: %.2f\n", preview.Retrievability)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RATING\tSTATE\tDUE\tINTERVAL")
	for _, r := range domain.Ratings {
		next := preview.Outcomes[r]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r, next.State, next.Due.Format(timeLayout), next.Due.Sub(preview.At).Round(time.Minute))
	}
	return w.Flush()
}

func (a *application) postpone(ctx context.Context, args []string, out io.Writer) error {
	pos, err := parseFlags("postpone", args, 2, nil)
	if err != nil {
		return err
	}
	cardID, err := parseID("card", pos[0])
	if err != nil {
		return err
	}
	days, err := strconv.Atoi(pos[1])
	if err != nil {
		return usagef("postpone: invalid days %q", pos[1])
	}

	schedule, err := a.reviewService.PostponeCard(ctx, cardID, days)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "postponed %s until %s\n", cardID, schedule.Due.Format(timeLayout))
	return nil
}

func (a *application) reschedule(ctx context.Context, args []string, out io.Writer) error {
	pos, err := parseFlags("reschedule", args, 1, nil)
	if err != nil {
		return err
	}
	deckID, err := parseID("deck", pos[0])
	if err != nil {
		return err
	}

	report, err := a.reviewService.RescheduleDeck(ctx, deckID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "rescheduled %d card(s)\n", report.Rescheduled)
	return nil
}

// history prints the review log of one card, or the user's most recent
// reviews when no card is given.
func (a *application) history(ctx context.Context, args []string, out io.Writer) error {
	var limit int
	pos, err := parseFlagsRange("history", args, 0, 1, func(fs *pflag.FlagSet) {
		fs.IntVar(&limit, "limit", 20, "maximum number of reviews across all cards")
	})
	if err != nil {
		return err
	}

	var reviews []*domain.Review
	if len(pos) == 1 {
		cardID, err := parseID("card", pos[0])
		if err != nil {
			return err
		}
		reviews, err = a.reviewService.CardReviews(ctx, cardID)
		if err != nil {
			return err
		}
	} else {
		reviews, err = a.reviewService.UserReviews(ctx, limit)
		if err != nil {
			return err
		}
	}

	if len(reviews) == 0 {
		fmt.Fprintln(out, "no reviews")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REVIEWED\tCARD\tRATING\tDURATION")
	for _, r := range reviews {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.CreatedAt.Format(timeLayout), r.CardID, r.Rating, r.Duration)
	}
	return w.Flush()
}

func printSchedule(out io.Writer, s *domain.CardSchedule) {
	fmt.Fprintf(out, "state: %s\ndue:   %s\nreps:  %d\nlapses: %d\n",
		s.State, s.Due.Format(timeLayout), s.Reps, s.Lapses)
	if s.State != domain.StateNew {
		fmt.Fprintf(out, "stability: %.2f\ndifficulty: %.2f\n", s.Stability, s.Difficulty)
	}
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) > 40 {
		return string([]rune(s)[:39]) + "…"
	}
	return s
}
