package course

type CreateCourseRequest struct {
	Name        string   `json:"name" binding:"required"`
	Code        string   `json:"code" binding:"required"`
	Semester    string   `json:"semester" binding:"required"`
	StartDate   string   `json:"start_date" binding:"required"`
	EndDate     string   `json:"end_date" binding:"required"`
	Weekdays    []string `json:"weekdays" binding:"required,min=1,dive,oneof=MON TUE WED THU FRI SAT SUN"`
	StartTime   string   `json:"start_time" binding:"required"`
	EndTime     string   `json:"end_time" binding:"required"`
	Room        *string  `json:"room"`
	Description *string  `json:"description"`
}

type EnrollmentResponse struct {
	ID        string `json:"id"`
	CourseID  string `json:"course_id"`
	StudentID string `json:"student_id"`
}

type CourseResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Code         string   `json:"code"`
	Semester     string   `json:"semester"`
	InstructorID string   `json:"instructor_id"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Weekdays     []string `json:"weekdays"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	Room         *string  `json:"room,omitempty"`
	Description  *string  `json:"description,omitempty"`
	IsActive     bool     `json:"is_active"`
}
