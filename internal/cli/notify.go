package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"swim-admin/internal/dto"
	"swim-admin/internal/service"
)

var (
	notifyDispatch bool
	notifyOutDir   string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "检查出勤表到期课程并发布提醒事件",
	Long: "列出两天后开课且尚未发送出勤表的课程，并为每门课程发布提醒事件。\n" +
		"加 --dispatch 时直接生成出勤表并写入 --out 目录；写入成功后才将课程标记为已发送，\n" +
		"写入失败的课程保持未发送，下次仍会出现在到期列表中。",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		due, err := a.svc.Automation.NotifyDue(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(due) == 0 {
			fmt.Fprintln(out, "没有到期课程")
			return nil
		}
		for _, d := range due {
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", d.StartDate, d.CourseNumber, d.Title, d.LeaderName)
		}
		if !notifyDispatch {
			return nil
		}

		if err := os.MkdirAll(notifyOutDir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
		var failed int
		for _, d := range due {
			var path string
			result, err := a.svc.Automation.DispatchTo(cmd.Context(), d.CourseID, func(r *dto.DispatchResult) error {
				path = filepath.Join(notifyOutDir, r.Filename)
				return os.WriteFile(path, r.Workbook, 0o644)
			})
			if err != nil {
				if !errors.Is(err, service.ErrAttendanceAlreadySent) {
					failed++
				}
				a.logger.Warn("出勤表发送失败", zap.String("course_id", d.CourseID), zap.Error(err))
				continue
			}
			fmt.Fprintf(out, "%s\n%s\n", path, result.Mail.MailtoLink)
		}
		if failed > 0 {
			return fmt.Errorf("%d 门课程的出勤表发送失败", failed)
		}
		return nil
	},
}

func init() {
	notifyCmd.Flags().BoolVar(&notifyDispatch, "dispatch", false, "生成出勤表并标记为已发送")
	notifyCmd.Flags().StringVarP(&notifyOutDir, "out", "o", ".", "出勤表输出目录")
	rootCmd.AddCommand(notifyCmd)
}
