package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ariefcatur/booknest/internal/library"
)

func (a *app) booksCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "books", Short: "Manage the catalog"}

	var in library.BookInput
	var publisher, launch string
	bookFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&in.Name, "name", "", "title")
		c.Flags().StringVar(&in.CategoryID, "category", "", "category id")
		c.Flags().StringVar(&in.CollectionID, "collection", "", "collection id")
		c.Flags().StringVar(&publisher, "publisher", "", "publisher")
		c.Flags().StringVar(&launch, "launch-date", "", "launch date (YYYY-MM-DD)")
	}
	fill := func() error {
		if publisher != "" {
			in.Publisher = &publisher
		}
		if launch != "" {
			d, err := library.ParseDate(launch)
			if err != nil {
				return fmt.Errorf("--launch-date: %w", err)
			}
			in.LaunchDate = &d
		}
		return nil
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List books",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ctx, cancel := a.ctx()
			defer cancel()
			books, err := a.c.ListBooks(ctx)
			if err != nil {
				return err
			}
			return a.render(books, func(w *tabwriter.Writer) { bookTable(w, books) })
		},
	}
	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, cancel := a.ctx()
			defer cancel()
			b, err := a.c.GetBook(ctx, args[0])
			if err != nil {
				return err
			}
			return a.render(b, func(w *tabwriter.Writer) { bookTable(w, []library.Book{b}) })
		},
	}
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if err := fill(); err != nil {
				return err
			}
			ctx, cancel := a.ctx()
			defer cancel()
			b, err := a.c.CreateBook(ctx, in)
			if err != nil {
				return err
			}
			return a.render(b, func(w *tabwriter.Writer) { bookTable(w, []library.Book{b}) })
		},
	}
	bookFlags(add)
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a book's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := fill(); err != nil {
				return err
			}
			ctx, cancel := a.ctx()
			defer cancel()
			b, err := a.c.UpdateBook(ctx, args[0], in)
			if err != nil {
				return err
			}
			return a.render(b, func(w *tabwriter.Writer) { bookTable(w, []library.Book{b}) })
		},
	}
	bookFlags(update)
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book that was never issued",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, cancel := a.ctx()
			defer cancel()
			if err := a.c.DeleteBook(ctx, args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintln(a.out, "deleted", args[0])
			return err
		},
	}

	cmd.AddCommand(list, get, add, update, del)
	return cmd
}

func (a *app) membersCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "members", Short: "Manage members"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List members",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ctx, cancel := a.ctx()
			defer cancel()
			ms, err := a.c.ListMembers(ctx)
			if err != nil {
				return err
			}
			return a.render(ms, func(w *tabwriter.Writer) { memberTable(w, ms) })
		},
	}
	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one member",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, cancel := a.ctx()
			defer cancel()
			m, err := a.c.GetMember(ctx, args[0])
			if err != nil {
				return err
			}
			return a.render(m, func(w *tabwriter.Writer) { memberTable(w, []library.Member{m}) })
		},
	}

	var in library.MemberInput
	var phone string
	add := &cobra.Command{
		Use:   "add",
		Short: "Register a member with an active membership",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if phone != "" {
				in.Phone = &phone
			}
			ctx, cancel := a.ctx()
			defer cancel()
			m, err := a.c.CreateMember(ctx, in)
			if err != nil {
				return err
			}
			return a.render(m, func(w *tabwriter.Writer) { memberTable(w, []library.Member{m}) })
		},
	}
	add.Flags().StringVar(&in.Name, "name", "", "full name")
	add.Flags().StringVar(&in.Email, "email", "", "email address")
	add.Flags().StringVar(&phone, "phone", "", "phone number")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a member without issuances",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, cancel := a.ctx()
			defer cancel()
			if err := a.c.DeleteMember(ctx, args[0]); err != nil {
				return err
			}
			_, err := fmt.Fprintln(a.out, "deleted", args[0])
			return err
		},
	}

	membership := &cobra.Command{
		Use:   "membership <id> <active|inactive>",
		Short: "Set a member's membership status",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, cancel := a.ctx()
			defer cancel()
			ms, err := a.c.SetMembership(ctx, args[0], library.MembershipStatus(args[1]))
			if err != nil {
				return err
			}
			return a.render(ms, nil)
		},
	}

	cmd.AddCommand(list, get, add, del, membership)
	return cmd
}

func (a *app) issueCmd() *cobra.Command {
	var in library.IssuanceInput
	var issuedBy, idemKey string
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Lend a book to a member",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if issuedBy != "" {
				in.IssuedBy = &issuedBy
			}
			ctx, cancel := a.ctx()
			defer cancel()
			iss, err := a.c.CreateIssuance(ctx, in, idemKey)
			if err != nil {
				return err
			}
			return a.render(iss, func(w *tabwriter.Writer) { issuanceTable(w, []library.Issuance{iss}) })
		},
	}
	cmd.Flags().StringVar(&in.BookID, "book", "", "book id")
	cmd.Flags().StringVar(&in.MemberID, "member", "", "member id")
	cmd.Flags().StringVar(&in.ReturnDate, "due", "", "return date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&issuedBy, "issued-by", "", "librarian name")
	cmd.Flags().StringVar(&idemKey, "idempotency-key", "", "retry-safe key for this loan")
	return cmd
}

func (a *app) returnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return <issuance-id>",
		Short: "Mark an issuance as returned",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, cancel := a.ctx()
			defer cancel()
			iss, err := a.c.ReturnIssuance(ctx, args[0])
			if err != nil {
				return err
			}
			return a.render(iss, func(w *tabwriter.Writer) { issuanceTable(w, []library.Issuance{iss}) })
		},
	}
}

func (a *app) issuancesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "issuances", Short: "Inspect issuances"}
	var q library.IssuanceQuery
	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List issuances, earliest due first",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			q.Status = library.IssuanceStatus(status)
			ctx, cancel := a.ctx()
			defer cancel()
			out, err := a.c.ListIssuances(ctx, q)
			if err != nil {
				return err
			}
			return a.render(out, func(w *tabwriter.Writer) { issuanceTable(w, out) })
		},
	}
	list.Flags().StringVar(&status, "status", "", "pending or returned")
	list.Flags().StringVar(&q.BookID, "book", "", "book id")
	list.Flags().StringVar(&q.MemberID, "member", "", "member id")
	cmd.AddCommand(list)
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard totals",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ctx, cancel := a.ctx()
			defer cancel()
			st, err := a.c.Stats(ctx)
			if err != nil {
				return err
			}
			return a.render(st, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "Books\t%d\n", st.TotalBooks)
				fmt.Fprintf(w, "Members\t%d\n", st.TotalMembers)
				fmt.Fprintf(w, "Active issuances\t%d\n", st.ActiveIssuances)
				fmt.Fprintf(w, "Overdue\t%d\n", len(st.OutstandingBooks))
				fmt.Fprintf(w, "Due later\t%d\n", len(st.PendingReturns))
			})
		},
	}
}

func (a *app) outstandingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outstanding",
		Short: "List pending issuances",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ctx, cancel := a.ctx()
			defer cancel()
			out, err := a.c.Outstanding(ctx)
			if err != nil {
				return err
			}
			return a.render(out, func(w *tabwriter.Writer) { issuanceTable(w, out) })
		},
	}
}

func (a *app) overdueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List pending issuances past their return date",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ctx, cancel := a.ctx()
			defer cancel()
			out, err := a.c.Overdue(ctx)
			if err != nil {
				return err
			}
			return a.render(out, func(w *tabwriter.Writer) { issuanceTable(w, out) })
		},
	}
}

func (a *app) neverBorrowedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "never-borrowed",
		Short: "List books that were never issued",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ctx, cancel := a.ctx()
			defer cancel()
			books, err := a.c.NeverBorrowed(ctx)
			if err != nil {
				return err
			}
			return a.render(books, func(w *tabwriter.Writer) { bookTable(w, books) })
		},
	}
}

func (a *app) mostBorrowedCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "most-borrowed",
		Short: "Rank books by number of issuances",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			ctx, cancel := a.ctx()
			defer cancel()
			out, err := a.c.MostBorrowed(ctx, limit)
			if err != nil {
				return err
			}
			return a.render(out, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "BOOK\tPUBLISHER\tBORROWED")
				for _, b := range out {
					fmt.Fprintf(w, "%s\t%s\t%d\n", b.Name, deref(b.Publisher), b.BorrowCount)
				}
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of books (server default 10)")
	return cmd
}

func bookTable(w *tabwriter.Writer, books []library.Book) {
	fmt.Fprintln(w, "ID\tNAME\tPUBLISHER\tLAUNCHED")
	for _, b := range books {
		launched := "-"
		if b.LaunchDate != nil {
			launched = b.LaunchDate.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.ID, b.Name, deref(b.Publisher), launched)
	}
}

func memberTable(w *tabwriter.Writer, ms []library.Member) {
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tMEMBERSHIP")
	for _, m := range ms {
		status := "-"
		if m.Membership != nil {
			status = string(m.Membership.Status)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Email, status)
	}
}

func issuanceTable(w *tabwriter.Writer, in []library.Issuance) {
	fmt.Fprintln(w, "ID\tBOOK\tMEMBER\tDUE\tSTATUS")
	for _, iss := range in {
		book, member := iss.BookID, iss.MemberID
		if iss.Book != nil {
			book = iss.Book.Name
		}
		if iss.Member != nil {
			member = iss.Member.Name
		}
		status := string(iss.Status)
		if iss.Overdue {
			status += " (overdue)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", iss.ID, book, member, iss.ReturnDate.Format("2006-01-02"), status)
	}
}
