package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tmwangi/kitabu/internal/model"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage the catalog (admin role required)",
}

var adminCourseCmd = &cobra.Command{
	Use:   "course",
	Short: "Course CRUD",
}

var adminCourseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a course",
	RunE:  runAdminCourseAdd,
}

var adminCourseUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a course",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminCourseUpdate,
}

var adminCourseDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a course",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminCourseDelete,
}

var adminSetStudentsCmd = &cobra.Command{
	Use:   "set-students <id> <count>",
	Short: "Set a course's student count",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdminSetStudents,
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Catalog analytics summary",
	RunE:  runAdminStats,
}

var coursePayloadFlags model.CoursePayload

func addCoursePayloadFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&coursePayloadFlags.Title, "title", "", "Course title")
	cmd.Flags().StringVar(&coursePayloadFlags.Description, "description", "", "Course description")
	cmd.Flags().StringVar(&coursePayloadFlags.Instructor, "instructor", "", "Instructor name")
	cmd.Flags().StringVar(&coursePayloadFlags.Category, "category", "", "Category")
	cmd.Flags().Float64Var(&coursePayloadFlags.Duration, "duration", 0, "Duration in hours")
	cmd.Flags().Float64Var(&coursePayloadFlags.Price, "price", 0, "Price (0 = free)")
	cmd.Flags().Float64Var(&coursePayloadFlags.Rating, "rating", 0, "Rating 0-5")
}

func init() {
	addCoursePayloadFlags(adminCourseAddCmd)
	addCoursePayloadFlags(adminCourseUpdateCmd)

	adminCourseCmd.AddCommand(adminCourseAddCmd)
	adminCourseCmd.AddCommand(adminCourseUpdateCmd)
	adminCourseCmd.AddCommand(adminCourseDeleteCmd)

	adminCmd.AddCommand(adminCourseCmd)
	adminCmd.AddCommand(adminSetStudentsCmd)
	adminCmd.AddCommand(adminStatsCmd)
}

func runAdminCourseAdd(cmd *cobra.Command, args []string) error {
	cl, err := newClients()
	if err != nil {
		return err
	}

	if err := coursePayloadFlags.Validate(); err != nil {
		return fmt.Errorf("invalid course: %w", err)
	}

	course, err := cl.courses.CreateCourse(cmd.Context(), coursePayloadFlags)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Created %s (%s)\n", course.Title, course.ID)
	return nil
}

func runAdminCourseUpdate(cmd *cobra.Command, args []string) error {
	cl, err := newClients()
	if err != nil {
		return err
	}

	// Start from the current course so unset flags don't blank fields
	current, err := cl.courses.GetCourseByID(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	payload := model.CoursePayload{
		Title:       current.Title,
		Description: current.Description,
		Instructor:  current.Instructor,
		Category:    current.Category,
		Duration:    current.Duration,
		Price:       current.Price,
		Rating:      current.Rating,
	}
	if cmd.Flags().Changed("title") {
		payload.Title = coursePayloadFlags.Title
	}
	if cmd.Flags().Changed("description") {
		payload.Description = coursePayloadFlags.Description
	}
	if cmd.Flags().Changed("instructor") {
		payload.Instructor = coursePayloadFlags.Instructor
	}
	if cmd.Flags().Changed("category") {
		payload.Category = coursePayloadFlags.Category
	}
	if cmd.Flags().Changed("duration") {
		payload.Duration = coursePayloadFlags.Duration
	}
	if cmd.Flags().Changed("price") {
		payload.Price = coursePayloadFlags.Price
	}
	if cmd.Flags().Changed("rating") {
		payload.Rating = coursePayloadFlags.Rating
	}

	if err := payload.Validate(); err != nil {
		return fmt.Errorf("invalid course: %w", err)
	}

	course, err := cl.courses.UpdateCourse(cmd.Context(), args[0], payload)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Updated %s\n", course.Title)
	return nil
}

func runAdminCourseDelete(cmd *cobra.Command, args []string) error {
	cl, err := newClients()
	if err != nil {
		return err
	}

	if err := cl.courses.DeleteCourse(cmd.Context(), args[0]); err != nil {
		return err
	}

	fmt.Println("✅ Course deleted.")
	return nil
}

func runAdminSetStudents(cmd *cobra.Command, args []string) error {
	cl, err := newClients()
	if err != nil {
		return err
	}

	var count int
	if _, err := fmt.Sscanf(args[1], "%d", &count); err != nil || count < 0 {
		return fmt.Errorf("count must be a non-negative integer")
	}

	course, err := cl.courses.UpdateStudentCount(cmd.Context(), args[0], count)
	if err != nil {
		return err
	}

	fmt.Printf("✅ %s now reports %d students\n", course.Title, course.Students)
	return nil
}

func runAdminStats(cmd *cobra.Command, args []string) error {
	cl, err := newClients()
	if err != nil {
		return err
	}

	courses, err := cl.courses.GetCourses(cmd.Context())
	if err != nil {
		return err
	}

	if len(courses) == 0 {
		fmt.Println("No courses in the catalog.")
		return nil
	}

	var totalStudents int
	var totalHours, totalRevenue, ratingSum float64
	rated := 0
	for _, c := range courses {
		totalStudents += c.Students
		totalHours += c.Duration
		totalRevenue += c.Price * float64(c.Students)
		if c.Rating > 0 {
			ratingSum += c.Rating
			rated++
		}
	}

	fmt.Printf("\n📊 Catalog analytics\n")
	fmt.Println(strings.Repeat("─", 44))
	fmt.Printf("  Courses:          %d\n", len(courses))
	fmt.Printf("  Total students:   %d\n", totalStudents)
	fmt.Printf("  Total content:    %.1f hours\n", totalHours)
	fmt.Printf("  Gross revenue:    $%.0f\n", totalRevenue)
	if rated > 0 {
		fmt.Printf("  Average rating:   %.2f★ (%d rated)\n", ratingSum/float64(rated), rated)
	}

	top := make([]model.Course, len(courses))
	copy(top, courses)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Students > top[j].Students })
	if len(top) > 5 {
		top = top[:5]
	}

	fmt.Printf("\n  Top by students\n")
	for i, c := range top {
		fmt.Printf("  %d. %-36s %d\n", i+1, truncate(c.Title, 36), c.Students)
	}
	fmt.Println()

	return nil
}
