package worker

import (
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/inventory-optimizer/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

const ReportMailType = "optimization_report"

// BuildReportMsg 根据报告数据渲染优化报告邮件
func BuildReportMsg(from, to string, tmpl *template.Template, report *domain.OptimizationReportMailData) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("无法设置邮件发件人: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("无法设置邮件收件人: %w", err)
	}
	if err := msg.SetBodyHTMLTemplate(tmpl, report); err != nil {
		return nil, fmt.Errorf("无法设置邮件正文: %w", err)
	}
	msg.Subject(fmt.Sprintf("库存优化系统 - %s 类商品 %d 年 %d 月优化报告", report.Category, report.Year, report.Month))

	return msg, nil
}
