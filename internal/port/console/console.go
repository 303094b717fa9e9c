package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/adapter/gateway"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/stay-client/internal/service"
)

const prompt = "stay> "

type Session interface {
	SignIn(ctx context.Context, username, password string) (*entity.User, error)
	SignUp(ctx context.Context, req entity.RegisterRequest) (*entity.User, error)
	SignOut(ctx context.Context)
	UpdateProfile(ctx context.Context, update entity.ProfileUpdate) (*entity.User, error)
	Verify(ctx context.Context) bool
	CurrentUser() *entity.User
}

type Listings interface {
	RefreshListings(ctx context.Context, limit, offset int)
	RefreshCount(ctx context.Context)
	SelectListing(ctx context.Context, id string)
	ClearSelectedListing()
	ToggleFavorite(id string) bool
	IsFavorite(id string) bool
	Favorites() []string
	AddReview(ctx context.Context, id, comment string, rating *float64) error
	Listings() []entity.ListingPreview
	Selected() *entity.ListingDetail
	Total() int64
	Err() string
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

// Console is a line-oriented front end over the two managers. It only
// renders their state; it holds none of its own.
type Console struct {
	in       io.Reader
	out      io.Writer
	session  Session
	listings Listings
	log      logger.Logger
	commands map[string]command
}

var errQuit = errors.New("quit")

func New(in io.Reader, out io.Writer, session Session, listings Listings, log logger.Logger) *Console {
	c := &Console{
		in:       in,
		out:      out,
		session:  session,
		listings: listings,
		log:      log,
	}
	c.commands = map[string]command{
		"help":     {"help", "show this list", c.help},
		"login":    {"login <username> <password>", "sign in", c.login},
		"register": {"register <username> <email> <first> <last> <password> <confirm>", "create an account and sign in", c.register},
		"logout":   {"logout", "sign out", c.logout},
		"whoami":   {"whoami", "show the signed-in user", c.whoami},
		"verify":   {"verify", "check the stored token with the server", c.verify},
		"profile":  {"profile first=<name> last=<name> email=<addr>", "update your profile", c.profile},
		"listings": {"listings [limit] [offset]", "load a page of listings", c.list},
		"count":    {"count", "show how many listings exist", c.count},
		"show":     {"show <id>", "show one listing", c.show},
		"close":    {"close", "forget the shown listing", c.closeListing},
		"fav":      {"fav <id>", "toggle a favorite", c.fav},
		"favs":     {"favs", "list favorites", c.favs},
		"review":   {"review <id> [rating=1-5] <comment...>", "post a review", c.review},
		"quit":     {"quit", "exit", func(context.Context, []string) error { return errQuit }},
	}
	return c
}

// Run reads commands until quit, EOF or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	c.printf("Type 'help' for commands.\n")
	for {
		c.printf(prompt)
		select {
		case <-ctx.Done():
			c.printf("\n")
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				c.printf("\n")
				return nil
			}
			if err := c.Exec(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				c.printf("error: %s\n", describe(err))
			}
		}
	}
}

// Exec runs a single command line.
func (c *Console) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToLower(fields[0])
	if name == "exit" {
		name = "quit"
	}
	cmd, ok := c.commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, try 'help'", fields[0])
	}
	c.log.Debug("console command", "command", name)
	return cmd.run(ctx, fields[1:])
}

func (c *Console) help(context.Context, []string) error {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := c.commands[name]
		c.printf("  %-62s %s\n", cmd.usage, cmd.help)
	}
	return nil
}

func (c *Console) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError(c.commands["login"])
	}
	user, err := c.session.SignIn(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	c.printf("Welcome back, %s.\n", user.DisplayName())
	return nil
}

func (c *Console) register(ctx context.Context, args []string) error {
	if len(args) != 6 {
		return usageError(c.commands["register"])
	}
	user, err := c.session.SignUp(ctx, entity.RegisterRequest{
		Username:        args[0],
		Email:           args[1],
		FirstName:       args[2],
		LastName:        args[3],
		Password:        args[4],
		PasswordConfirm: args[5],
	})
	if err != nil {
		return err
	}
	c.printf("Account created. Signed in as %s.\n", user.Username)
	return nil
}

func (c *Console) logout(ctx context.Context, _ []string) error {
	c.session.SignOut(ctx)
	c.printf("Signed out.\n")
	return nil
}

func (c *Console) whoami(context.Context, []string) error {
	u := c.session.CurrentUser()
	if u == nil {
		c.printf("Not signed in.\n")
		return nil
	}
	c.printf("%s (%s) <%s>, id %d\n", u.DisplayName(), u.Username, u.Email, u.ID)
	return nil
}

func (c *Console) verify(ctx context.Context, _ []string) error {
	if c.session.Verify(ctx) {
		c.printf("Session is valid.\n")
	} else {
		c.printf("No valid session.\n")
	}
	return nil
}

func (c *Console) profile(ctx context.Context, args []string) error {
	var upd entity.ProfileUpdate
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return usageError(c.commands["profile"])
		}
		switch key {
		case "first":
			upd.FirstName = value
		case "last":
			upd.LastName = value
		case "email":
			upd.Email = value
		default:
			return usageError(c.commands["profile"])
		}
	}
	user, err := c.session.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}
	c.printf("Profile updated: %s <%s>\n", user.DisplayName(), user.Email)
	return nil
}

func (c *Console) list(ctx context.Context, args []string) error {
	limit, offset := 0, 0
	var err error
	if len(args) > 0 {
		if limit, err = strconv.Atoi(args[0]); err != nil || limit <= 0 {
			return usageError(c.commands["listings"])
		}
	}
	if len(args) > 1 {
		if offset, err = strconv.Atoi(args[1]); err != nil || offset < 0 {
			return usageError(c.commands["listings"])
		}
	}

	c.listings.RefreshListings(ctx, limit, offset)
	if msg := c.listings.Err(); msg != "" {
		c.printf("%s\n", msg)
	}
	page := c.listings.Listings()
	if len(page) == 0 {
		c.printf("No listings.\n")
		return nil
	}
	for i, l := range page {
		c.printf("%3d. %s %-12s %-40s %8.2f  %s\n", offset+i+1, c.favMark(l.ID), l.ID, l.Title, l.Price, l.Location)
	}
	return nil
}

func (c *Console) count(ctx context.Context, _ []string) error {
	c.listings.RefreshCount(ctx)
	if msg := c.listings.Err(); msg != "" {
		c.printf("%s\n", msg)
		return nil
	}
	c.printf("%d listings\n", c.listings.Total())
	return nil
}

func (c *Console) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError(c.commands["show"])
	}
	c.listings.SelectListing(ctx, args[0])
	if msg := c.listings.Err(); msg != "" {
		c.printf("%s\n", msg)
	}
	if d := c.listings.Selected(); d != nil {
		c.renderDetail(d)
	}
	return nil
}

func (c *Console) closeListing(context.Context, []string) error {
	c.listings.ClearSelectedListing()
	return nil
}

func (c *Console) fav(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usageError(c.commands["fav"])
	}
	if c.listings.ToggleFavorite(args[0]) {
		c.printf("Added %s to favorites.\n", args[0])
	} else {
		c.printf("Removed %s from favorites.\n", args[0])
	}
	return nil
}

func (c *Console) favs(context.Context, []string) error {
	ids := c.listings.Favorites()
	if len(ids) == 0 {
		c.printf("No favorites yet.\n")
		return nil
	}
	c.printf("%s\n", strings.Join(ids, "\n"))
	return nil
}

func (c *Console) review(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usageError(c.commands["review"])
	}
	id, rest := args[0], args[1:]

	var rating *float64
	if v, ok := strings.CutPrefix(rest[0], "rating="); ok {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return usageError(c.commands["review"])
		}
		rating = &r
		rest = rest[1:]
	}

	if err := c.listings.AddReview(ctx, id, strings.Join(rest, " "), rating); err != nil {
		return err
	}
	c.printf("Review posted.\n")
	if d := c.listings.Selected(); d != nil && d.ID == id {
		c.renderDetail(d)
	}
	return nil
}

func (c *Console) renderDetail(d *entity.ListingDetail) {
	c.printf("%s %s\n", c.favMark(d.ID), d.Title)
	c.printf("  %s, %.2f per night\n", d.Location, d.Price)
	if d.HasRating() {
		c.printf("  rating %.0f\n", d.Rating)
	} else {
		c.printf("  no rating yet\n")
	}
	if d.Description != "" {
		c.printf("  %s\n", d.Description)
	}
	if len(d.Reviews) == 0 {
		c.printf("  No reviews\n")
		return
	}
	c.printf("  %d review(s):\n", len(d.Reviews))
	for _, r := range d.Reviews {
		who := r.ReviewerName
		if who == "" {
			who = "anonymous"
		}
		if r.Date != nil {
			c.printf("   - %s, %s: %s\n", who, r.Date.Format("2006-01-02"), r.Comments)
		} else {
			c.printf("   - %s: %s\n", who, r.Comments)
		}
	}
}

func (c *Console) favMark(id string) string {
	if c.listings.IsFavorite(id) {
		return "*"
	}
	return " "
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}

func usageError(cmd command) error {
	return fmt.Errorf("usage: %s", cmd.usage)
}

// describe renders an error the way the UI shows it.
func describe(err error) string {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		keys := make([]string, 0, len(verr.Fields))
		for k := range verr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		msgs := make([]string, 0, len(keys))
		for _, k := range keys {
			msgs = append(msgs, verr.Fields[k])
		}
		return strings.Join(msgs, "; ")
	}
	if apiErr, ok := gateway.AsAPIError(err); ok {
		return apiErr.Message()
	}
	return err.Error()
}
