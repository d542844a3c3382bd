package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tmwangi/kitabu/internal/model"
	"github.com/tmwangi/kitabu/internal/query"
)

var coursesCmd = &cobra.Command{
	Use:     "courses",
	Aliases: []string{"c"},
	Short:   "Browse the course catalog",
}

var coursesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List courses",
	Long: `List courses, optionally narrowed by a title search and bucket filters.

Bucket keys:
  --students  any, lt500, 500_2000, 2000_10000, gt10000
  --duration  any, lt5, 5_10, 10_20, gt20
  --price     any, free, lt50, 50_100, 100_200, gt200
  --rating    any, gte35, gte40, gte45

Examples:
  kitabu courses list
  kitabu courses list --search react
  kitabu courses list --price free --rating gte45`,
	RunE: runCoursesList,
}

var coursesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one course",
	Args:  cobra.ExactArgs(1),
	RunE:  runCoursesShow,
}

var coursesEnrollCmd = &cobra.Command{
	Use:   "enroll <id>",
	Short: "Enroll in a course",
	Args:  cobra.ExactArgs(1),
	RunE:  runCoursesEnroll,
}

var coursesEnrolledCmd = &cobra.Command{
	Use:   "enrolled",
	Short: "List your enrolled courses with progress",
	RunE:  runCoursesEnrolled,
}

var (
	listSearch   string
	listStudents string
	listDuration string
	listPrice    string
	listRating   string
)

func init() {
	coursesListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Filter by title substring")
	coursesListCmd.Flags().StringVar(&listStudents, "students", "any", "Students bucket")
	coursesListCmd.Flags().StringVar(&listDuration, "duration", "any", "Duration bucket")
	coursesListCmd.Flags().StringVar(&listPrice, "price", "any", "Price bucket")
	coursesListCmd.Flags().StringVar(&listRating, "rating", "any", "Rating bucket")

	coursesCmd.AddCommand(coursesListCmd)
	coursesCmd.AddCommand(coursesShowCmd)
	coursesCmd.AddCommand(coursesEnrollCmd)
	coursesCmd.AddCommand(coursesEnrolledCmd)
}

// parseFilters builds a filter state from the bucket flags
func parseFilters() (query.Filters, error) {
	var f query.Filters
	var err error

	if f.Students, err = query.ParseStudentsBucket(listStudents); err != nil {
		return f, err
	}
	if f.Duration, err = query.ParseDurationBucket(listDuration); err != nil {
		return f, err
	}
	if f.Price, err = query.ParsePriceBucket(listPrice); err != nil {
		return f, err
	}
	if f.Rating, err = query.ParseRatingBucket(listRating); err != nil {
		return f, err
	}
	return f, nil
}

func runCoursesList(cmd *cobra.Command, args []string) error {
	cl, err := newClients()
	if err != nil {
		return err
	}

	filters, err := parseFilters()
	if err != nil {
		return err
	}

	courses, err := cl.courses.GetCourses(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load courses: %w", err)
	}

	// One-shot command: no debounce, apply the normalized query directly
	q := strings.ToLower(strings.TrimSpace(listSearch))
	matched := query.Apply(courses, q, filters)

	if len(matched) == 0 {
		fmt.Println("No courses match.")
		return nil
	}

	fmt.Printf("\n📚 %d of %d courses\n", len(matched), len(courses))
	fmt.Println(strings.Repeat("─", 78))
	for _, c := range matched {
		printCourse(c)
	}
	fmt.Println()

	return nil
}

func runCoursesShow(cmd *cobra.Command, args []string) error {
	cl, err := newClients()
	if err != nil {
		return err
	}

	course, err := cl.courses.GetCourseByID(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("\n%s\n", course.Title)
	fmt.Println(strings.Repeat("─", 60))
	if course.Description != "" {
		fmt.Println(course.Description)
		fmt.Println()
	}
	if course.Instructor != "" {
		fmt.Printf("  Instructor: %s\n", course.Instructor)
	}
	if course.Category != "" {
		fmt.Printf("  Category:   %s\n", course.Category)
	}
	fmt.Printf("  Students:   %d\n", course.Students)
	fmt.Printf("  Duration:   %s\n", formatDuration(course.Duration))
	fmt.Printf("  Price:      %s\n", formatPrice(course.Price))
	fmt.Printf("  Rating:     %.1f★\n", course.Rating)
	fmt.Printf("  ID:         %s\n\n", course.ID)

	return nil
}

func runCoursesEnroll(cmd *cobra.Command, args []string) error {
	cl, err := newClients()
	if err != nil {
		return err
	}

	cl.session.Bootstrap(cmd.Context())
	user, ok := cl.session.User()
	if !ok {
		return fmt.Errorf("not logged in; run: kitabu auth login")
	}

	enr, err := cl.courses.EnrollInCourse(cmd.Context(), model.EnrollRequest{
		UserID:   user.ID,
		CourseID: args[0],
	})
	if err != nil {
		return err
	}

	fmt.Printf("✅ Enrolled in %s\n", enr.Course.Title)
	return nil
}

func runCoursesEnrolled(cmd *cobra.Command, args []string) error {
	cl, err := newClients()
	if err != nil {
		return err
	}

	cl.session.Bootstrap(cmd.Context())
	user, ok := cl.session.User()
	if !ok {
		return fmt.Errorf("not logged in; run: kitabu auth login")
	}

	enrollments, err := cl.courses.GetEnrolledCourses(cmd.Context(), user.ID)
	if err != nil {
		return err
	}

	if len(enrollments) == 0 {
		fmt.Println("No enrollments yet. Browse with: kitabu courses list")
		return nil
	}

	fmt.Printf("\n🎓 %d enrolled\n", len(enrollments))
	fmt.Println(strings.Repeat("─", 60))
	for _, e := range enrollments {
		fmt.Printf("  %-40s %5.1f%%\n", truncate(e.Course.Title, 40), e.Progress)
	}
	fmt.Println()

	return nil
}

func printCourse(c model.Course) {
	shortID := c.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	fmt.Printf("  %-8s  %-36s %7s  %6s  %6s  %.1f★\n",
		shortID,
		truncate(c.Title, 36),
		fmt.Sprintf("%d 👥", c.Students),
		formatDuration(c.Duration),
		formatPrice(c.Price),
		c.Rating)
}

func formatPrice(v float64) string {
	if v == 0 {
		return "free"
	}
	return fmt.Sprintf("$%.0f", v)
}

func formatDuration(v float64) string {
	return fmt.Sprintf("%gh", v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
