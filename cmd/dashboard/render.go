package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Clark-Hu/store-ratings/internal/dashboard"
	"github.com/Clark-Hu/store-ratings/internal/domain"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func renderAdmin(w io.Writer, v dashboard.AdminView) {
	fmt.Fprintf(w, "Users: %d   Stores: %d   Ratings: %d\n\n", v.Stats.TotalUsers, v.Stats.TotalStores, v.Stats.TotalRatings)

	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tEMAIL\tROLE\tADDRESS\tSTORE RATING")
	for _, row := range v.Users {
		rating := "-"
		if row.OwnsStore {
			rating = fmt.Sprintf("%.1f", row.OwnedStoreRating)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.Name, row.Email, row.Role, row.Address, rating)
	}
	_ = tw.Flush()
	fmt.Fprintln(w)

	renderStores(w, v.Stores)
}

func renderStores(w io.Writer, stores []domain.StoreView) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTORE\tEMAIL\tADDRESS\tAVERAGE\tRATINGS\tOWNER")
	for _, s := range stores {
		owner := s.OwnerID
		if s.Unassigned() {
			owner = "unassigned"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f\t%d\t%s\n", s.ID, s.Name, s.Email, s.Address, s.AverageRating, s.TotalRatings, owner)
	}
	_ = tw.Flush()
}

func renderOwner(w io.Writer, v dashboard.OwnerView) {
	if v.Empty {
		fmt.Fprintln(w, "No stores are linked to your account yet.")
		return
	}
	if len(v.Stores) > 1 {
		fmt.Fprintln(w, "Your stores:")
		renderStores(w, v.Stores)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s (%s)\n", v.Selected.Name, v.Selected.Address)
	fmt.Fprintf(w, "Average %.1f from %d ratings, %d positive\n\n", v.Summary.Average, v.Summary.Count, v.Positive)
	for stars := domain.MaxStars; stars >= domain.MinStars; stars-- {
		n := v.Histogram.Stars(stars)
		fmt.Fprintf(w, "%d★ %-20s %d\n", stars, strings.Repeat("#", bar(n, v.Histogram.Total(), 20)), n)
	}
	fmt.Fprintln(w)

	tw := newTable(w)
	fmt.Fprintln(tw, "CUSTOMER\tEMAIL\tRATING\tCOMMENT\tDATE")
	for _, r := range v.Ratings {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", r.UserName, r.UserEmail, r.Value, r.Comment, r.CreatedAt.Format("2006-01-02"))
	}
	_ = tw.Flush()
}

func bar(n, total, width int) int {
	if total == 0 {
		return 0
	}
	return n * width / total
}

func renderUser(w io.Writer, v dashboard.UserView) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tSTORE\tADDRESS\tAVERAGE\tRATINGS\tYOUR RATING\tCOMMENT")
	for _, c := range v.Cards {
		mine := stars(c.Widget.Stars)
		if c.Widget.Dirty {
			mine += " (unsaved)"
		} else if c.Widget.Submitted > 0 {
			mine += fmt.Sprintf(" (you rated this %d stars)", c.Widget.Submitted)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%d\t%s\t%s\n",
			c.Store.ID, c.Store.Name, c.Store.Address, c.Store.AverageRating, c.Store.TotalRatings, mine, c.Widget.Comment)
	}
	_ = tw.Flush()
}

func stars(n int) string {
	if n <= 0 {
		return "-"
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", domain.MaxStars-n)
}

func renderNotice(w io.Writer, n dashboard.Notice) {
	if n.Kind == dashboard.NoticeNone {
		return
	}
	fmt.Fprintf(w, "\n%s\n", n.Message)
}
