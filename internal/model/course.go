package model

// Course 课程表，对应 courses
type Course struct {
	CourseID            string  `gorm:"type:varchar(64);primaryKey"           json:"course_id"`
	Title               string  `gorm:"type:varchar(200);not null"            json:"title"`
	Location            string  `gorm:"type:varchar(100)"                     json:"location"`
	Price               float64 `gorm:"type:numeric(10,2);not null;default:0" json:"price"`
	Notes               string  `gorm:"type:text"                             json:"notes"`
	Color               string  `gorm:"type:varchar(20)"                      json:"color"`
	Category            string  `gorm:"type:varchar(50)"                      json:"category"`
	RequiredInstructors int     `gorm:"not null;default:0"                    json:"required_instructors"` // 每课时所需 A 类人数
	RequiredHelpers     int     `gorm:"not null;default:0"                    json:"required_helpers"`     // 每课时所需 B 类人数
	LeaderID            string  `gorm:"type:varchar(64)"                      json:"leader_id"`
	CourseNumber        string  `gorm:"type:varchar(30)"                      json:"course_number"`
	BilledDate          *string `gorm:"type:varchar(10)"                      json:"billed_date,omitempty"`
	PoolRent            float64 `gorm:"type:numeric(10,2);not null;default:0" json:"pool_rent"`
	AttendanceListSent  bool    `gorm:"not null;default:false"                json:"attendance_list_sent"`
	VersionedModel

	// 关联
	Participants []Participant `gorm:"foreignKey:CourseID;references:CourseID" json:"participants"`
	Sessions     []Session     `gorm:"foreignKey:CourseID;references:CourseID" json:"sessions"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// Clone 深拷贝课程（含学员与课时）
func (c Course) Clone() Course {
	out := c
	if c.BilledDate != nil {
		d := *c.BilledDate
		out.BilledDate = &d
	}
	out.Participants = make([]Participant, len(c.Participants))
	copy(out.Participants, c.Participants)
	out.Sessions = make([]Session, len(c.Sessions))
	for i, s := range c.Sessions {
		s.InstructorIDs = s.InstructorIDs.Clone()
		out.Sessions[i] = s
	}
	return out
}

// SessionIndex 返回课时下标，不存在时返回 -1
func (c *Course) SessionIndex(sessionID string) int {
	for i := range c.Sessions {
		if c.Sessions[i].SessionID == sessionID {
			return i
		}
	}
	return -1
}

// Session 课时表，对应 sessions
type Session struct {
	SessionID       string      `gorm:"type:varchar(64);primaryKey" json:"session_id"`
	CourseID        string      `gorm:"type:varchar(64);not null;index" json:"course_id"`
	Date            string      `gorm:"type:varchar(10);not null"  json:"date"`       // YYYY-MM-DD
	StartTime       string      `gorm:"type:varchar(5);not null"   json:"start_time"` // HH:MM
	DurationMinutes int         `gorm:"not null;default:45"        json:"duration_minutes"`
	InstructorIDs   StringArray `gorm:"type:text[];not null"       json:"instructor_ids"`
	IsReplacement   bool        `gorm:"not null;default:false"     json:"is_replacement"`
	Is5er           bool        `gorm:"column:is_5er;not null;default:false" json:"is_5er"`
	Is7er           bool        `gorm:"column:is_7er;not null;default:false" json:"is_7er"`
	IsConfirmed     bool        `gorm:"not null;default:false"     json:"is_confirmed"`
}

// TableName 指定表名
func (Session) TableName() string { return "sessions" }

// Participant 学员表，对应 participants
type Participant struct {
	ParticipantID string `gorm:"type:varchar(64);primaryKey"     json:"participant_id"`
	CourseID      string `gorm:"type:varchar(64);not null;index" json:"course_id"`
	Name          string `gorm:"type:varchar(100);not null"      json:"name"`
	DateOfBirth   string `gorm:"type:varchar(10)"                json:"date_of_birth"`
	Phone         string `gorm:"type:varchar(50)"                json:"phone"`
	Email         string `gorm:"type:varchar(255)"               json:"email"`
	GuardianName  string `gorm:"type:varchar(100)"               json:"guardian_name"`
	Paid          bool   `gorm:"not null;default:false"          json:"paid"`
	Notes         string `gorm:"type:text"                       json:"notes,omitempty"`
}

// TableName 指定表名
func (Participant) TableName() string { return "participants" }
