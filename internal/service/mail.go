package service

import (
	"fmt"
	"strconv"
	"strings"

	"swim-admin/internal/dto"
	"swim-admin/internal/model"
	"swim-admin/pkg/mailto"
)

// 邮件正文为德语，与课程参与者的沟通语言一致

func newDraft(to []string, subject, body string) dto.MailDraft {
	return dto.MailDraft{
		To:         to,
		Subject:    subject,
		Body:       body,
		MailtoLink: mailto.Link(to, subject, body),
	}
}

func rosterTable(roster dto.Roster) string {
	var b strings.Builder
	b.WriteString("(Name des Kursteilnehmers)")
	for _, col := range roster.Columns {
		b.WriteString("\t(" + col + ")")
	}
	b.WriteString("\n")
	if len(roster.Participants) == 0 {
		b.WriteString("(Noch keine Teilnehmer angemeldet)")
		return b.String()
	}
	for _, name := range roster.Participants {
		b.WriteString(name)
		b.WriteString(strings.Repeat("\t", len(roster.Columns)))
		b.WriteString("\n")
	}
	return b.String()
}

// attendanceReminderDraft 自动提醒：出勤表邮件
func attendanceReminderDraft(course *model.Course, leader *model.User, roster dto.Roster) dto.MailDraft {
	subject := "AUTOMATISCHE ERINNERUNG - Anwesenheitsliste: " + course.Title
	body := fmt.Sprintf(`Hallo %s,

dein Kurs "%s" beginnt in %d Tagen. Anbei erhältst du die Anwesenheitsliste.
ORT: %s

%s

Beste Grüße,
Deine Kursverwaltung (Automatischer Versand)

---
HINWEIS: Die detaillierte Anwesenheitsliste steht als Datei zum Download bereit. Bitte füge diese dieser E-Mail als Anhang hinzu.`,
		leader.Name, course.Title, NotificationLeadDays, course.Location, rosterTable(roster))
	return newDraft([]string{leader.Email}, subject, body)
}

// sessionConfirmedDraft 课时确认通知
func sessionConfirmedDraft(course *model.Course, session *model.Session, recipients []string) dto.MailDraft {
	date := GermanDate(session.Date)
	subject := fmt.Sprintf("Terminbestätigung: %s am %s", course.Title, date)
	body := fmt.Sprintf(`Hallo,

der folgende Termin wurde soeben offiziell bestätigt:

Kurs: %s
Datum: %s
Zeit: %s Uhr
Ort: %s

Bitte trage dir den Termin fest in deinen Kalender ein. Die Kalenderdatei (.ics) liegt dieser Nachricht bei.

Beste Grüße,
die Kursverwaltung`, course.Title, date, session.StartTime, course.Location)
	return newDraft(recipients, subject, body)
}

// paymentConfirmationDraft 付款确认
func paymentConfirmationDraft(course *model.Course, p *model.Participant) dto.MailDraft {
	firstDate := "wird noch bekannt gegeben"
	if earliest, ok := EarliestSession(course); ok {
		firstDate = GermanDate(earliest)
	}
	subject := "Zahlungsbestätigung - " + course.Title
	body := fmt.Sprintf(`ZAHLUNGSBESTÄTIGUNG

Wir bestätigen den Zahlungseingang wie folgt:

Schwimmkurs: %s
Name des Teilnehmers: %s
Kursbetrag: %s EUR

Der Kursbetrag wurde bar erhalten am %s

Wir wünschen noch viel Spaß beim Schwimmen!

Euer Kursteam`, course.Title, p.Name, germanAmount(course.Price), firstDate)
	return newDraft([]string{p.Email}, subject, body)
}

// germanAmount 149 → "149", 149.5 → "149,50"
func germanAmount(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
}
