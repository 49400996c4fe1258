package dto

// ── 自动提醒 ──

// DueCourse 两天后开课、尚未发送出勤表的课程
type DueCourse struct {
	CourseID     string `json:"course_id"`
	Title        string `json:"title"`
	CourseNumber string `json:"course_number"`
	LeaderID     string `json:"leader_id"`
	LeaderName   string `json:"leader_name,omitempty"`
	StartDate    string `json:"start_date"`
}

// DispatchResult 出勤表派发结果
type DispatchResult struct {
	CourseID string    `json:"course_id"`
	Mail     MailDraft `json:"mail"`
	Filename string    `json:"filename"`
	Roster   Roster    `json:"roster"`
	// Workbook 出勤表 xlsx 内容，仅供 CLI 落盘
	Workbook []byte `json:"-"`
}

// Roster 出勤表：学员 × 课时日期
type Roster struct {
	Title        string   `json:"title"`
	CourseNumber string   `json:"course_number"`
	Location     string   `json:"location"`
	Leader       string   `json:"leader"`
	Team         []string `json:"team"`
	Columns      []string `json:"columns"`
	Participants []string `json:"participants"`
}

// UpcomingSession 明日课时
type UpcomingSession struct {
	CourseID        string   `json:"course_id"`
	CourseTitle     string   `json:"course_title"`
	Location        string   `json:"location"`
	SessionID       string   `json:"session_id"`
	Date            string   `json:"date"`
	StartTime       string   `json:"start_time"`
	DurationMinutes int      `json:"duration_minutes"`
	IsReplacement   bool     `json:"is_replacement"`
	Instructors     []string `json:"instructors"`
}
