package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/go-kyc-client/auth"
	"github.com/jrsteele09/go-kyc-client/internal/utils"
	"github.com/jrsteele09/go-kyc-client/kyc"
	"github.com/jrsteele09/go-kyc-client/sessions"
)

var errUsage = errors.New("usage")

type command struct {
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":     {"login -u USER [-p PASSWORD]      sign in (password falls back to KYC_PASSWORD)", loginCmd},
	"register":  {"register -u USER -e EMAIL -p PASSWORD [-first NAME] [-last NAME]", registerCmd},
	"logout":    {"logout                            end the local session", logoutCmd},
	"whoami":    {"whoami                            show the signed in user", whoamiCmd},
	"refresh":   {"refresh                           exchange the refresh token for new tokens", refreshCmd},
	"status":    {"status [-c CUSTOMER]              show the verification status", statusCmd},
	"documents": {"documents [-c CUSTOMER]           list submitted documents", documentsCmd},
	"submit":    {"submit -t TYPE -f FILE [-c CUSTOMER] [-basis LEGAL_BASIS]", submitCmd},
}

func printUsage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "Usage: kycctl <command> [flags]")
	fmt.Fprintln(w)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

func newFlagSet(name string, a *app) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

// reportSessionError prints the message the session recorded for a failed auth call.
func (a *app) reportSessionError(err error) error {
	if msg := a.session.Error(); msg != "" {
		fmt.Fprintln(a.out, a.paint.Error(msg))
	}
	return err
}

func loginCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("login", a)
	username := fs.String("u", "", "username")
	password := fs.String("p", os.Getenv("KYC_PASSWORD"), "password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	response, err := a.auth.Login(ctx, auth.LoginRequest{Username: *username, Password: *password})
	if err != nil {
		return a.reportSessionError(err)
	}
	fmt.Fprintf(a.out, "%s as %s\n", a.paint.Success("Logged in"), response.User.DisplayName())
	return nil
}

func registerCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("register", a)
	var request auth.RegisterRequest
	fs.StringVar(&request.Username, "u", "", "username")
	fs.StringVar(&request.Email, "e", "", "email")
	fs.StringVar(&request.Password, "p", "", "password")
	fs.StringVar(&request.FirstName, "first", "", "first name")
	fs.StringVar(&request.LastName, "last", "", "last name")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	if err := a.auth.Register(ctx, request); err != nil {
		return a.reportSessionError(err)
	}
	fmt.Fprintf(a.out, "%s, you can now log in as %s\n", a.paint.Success("Registered"), request.Username)
	return nil
}

func logoutCmd(_ context.Context, a *app, _ []string) error {
	a.auth.Logout()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func whoamiCmd(_ context.Context, a *app, _ []string) error {
	st := a.session.Snapshot()
	if !st.IsAuthenticated {
		fmt.Fprintln(a.out, "Not logged in")
		return auth.NotAuthenticatedErr
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "User:\t%s\n", st.User.DisplayName())
	fmt.Fprintf(tw, "Username:\t%s\n", st.User.Username)
	fmt.Fprintf(tw, "Email:\t%s\n", st.User.Email)
	fmt.Fprintf(tw, "Customer:\t%s\n", st.User.CustomerID)
	fmt.Fprintf(tw, "Roles:\t%s\n", strings.Join(st.User.Roles, ", "))
	fmt.Fprintf(tw, "Token:\t%s\n", tokenSummary(st.Token, time.Now()))
	return tw.Flush()
}

func tokenSummary(token string, now time.Time) string {
	exp, err := sessions.TokenExpiry(token)
	if err != nil {
		return "unreadable"
	}
	if sessions.IsExpired(token, now) {
		return "expired " + exp.Local().Format(time.RFC1123)
	}
	return "valid until " + exp.Local().Format(time.RFC1123)
}

func refreshCmd(ctx context.Context, a *app, _ []string) error {
	if _, err := a.auth.RefreshToken(ctx); err != nil {
		if errors.Is(err, auth.NoRefreshTokenErr) {
			fmt.Fprintln(a.out, "Not logged in")
		} else {
			fmt.Fprintln(a.out, a.paint.Error("Refresh failed, you have been logged out"))
		}
		return err
	}
	fmt.Fprintln(a.out, a.paint.Success("Tokens refreshed"))
	return nil
}

// customerID returns the -c flag value, or the signed in user's customer id.
func (a *app) customerID(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	user := a.session.CurrentUser()
	if user == nil {
		return "", auth.NotAuthenticatedErr
	}
	if user.CustomerID == "" {
		return "", fmt.Errorf("no customer id on this account, pass -c")
	}
	return user.CustomerID, nil
}

func statusCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("status", a)
	customer := fs.String("c", "", "customer id")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	customerID, err := a.customerID(*customer)
	if err != nil {
		return err
	}

	if _, err := a.kyc.LoadStatus(ctx, customerID); err != nil {
		fmt.Fprintln(a.out, a.paint.Error(a.kyc.Store().Snapshot().Error))
		return err
	}

	st := a.kyc.Store().Snapshot()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Customer:\t%s\n", customerID)
	fmt.Fprintf(tw, "Overall:\t%s\n", a.paint.Status(st.OverallStatus()))
	fmt.Fprintf(tw, "Document:\t%s\n", a.paint.Status(st.CurrentStatus.DocumentStatus))
	fmt.Fprintf(tw, "Risk:\t%s\n", a.paint.Status(st.CurrentStatus.RiskLevel))
	fmt.Fprintf(tw, "Confidence:\t%.2f\n", st.CurrentStatus.ConfidenceScore)
	for _, finding := range st.CurrentStatus.Findings {
		fmt.Fprintf(tw, "Finding:\t%s\n", finding)
	}
	return tw.Flush()
}

func documentsCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("documents", a)
	customer := fs.String("c", "", "customer id")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	customerID, err := a.customerID(*customer)
	if err != nil {
		return err
	}

	if _, err := a.kyc.LoadDocuments(ctx, customerID); err != nil {
		fmt.Fprintln(a.out, a.paint.Error(a.kyc.Store().Snapshot().Error))
		return err
	}

	st := a.kyc.Store().Snapshot()
	if !st.HasSubmissions() {
		fmt.Fprintln(a.out, "No documents submitted")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tRISK\tCONFIDENCE\tCREATED")
	for _, doc := range st.Submissions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%s\n",
			doc.ID,
			doc.DocumentType,
			a.paint.Status(string(doc.VerificationStatus)),
			a.paint.Status(string(doc.RiskLevel)),
			utils.Value(doc.ConfidenceScore),
			doc.CreatedAt,
		)
	}
	return tw.Flush()
}

func submitCmd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("submit", a)
	customer := fs.String("c", "", "customer id")
	docType := fs.String("t", "", "document type")
	path := fs.String("f", "", "document file")
	basis := fs.String("basis", "", "GDPR legal basis (default LEGAL_OBLIGATION)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *path == "" {
		fmt.Fprintln(a.out, "submit needs -f FILE")
		return errUsage
	}
	customerID, err := a.customerID(*customer)
	if err != nil {
		return err
	}

	f, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("[submit] %w", err)
	}
	defer f.Close()

	response, err := a.kyc.SubmitDocument(ctx, customerID, kyc.SubmissionRequest{
		Document:   f,
		FileName:   filepath.Base(*path),
		DocType:    kyc.DocumentType(strings.ToUpper(*docType)),
		LegalBasis: kyc.LegalBasis(strings.ToUpper(*basis)),
	})
	if err != nil {
		if msg := a.kyc.Store().Snapshot().Error; msg != "" {
			fmt.Fprintln(a.out, a.paint.Error(msg))
		}
		return err
	}

	fmt.Fprintf(a.out, "%s %s (%s)\n", a.paint.Success("Submitted"), response.DocumentID, a.paint.Status(response.Status))
	if response.Message != "" {
		fmt.Fprintln(a.out, response.Message)
	}
	return nil
}
