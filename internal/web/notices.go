package web

import (
	"fmt"

	"github.com/cusc/copywriter/internal/campaign"
	"github.com/cusc/copywriter/internal/errors"
)

// Toast texts shown to marketing staff.
const (
	msgGenerated     = "Tạo prompt thành công! 🎉"
	msgGenerateError = "Có lỗi xảy ra khi tạo prompt. Vui lòng thử lại!"
	msgCopied        = "Đã sao chép prompt vào clipboard!"
	msgCopyFailed    = "Không thể sao chép. Vui lòng thử lại!"
	msgBadLogin      = "Tên đăng nhập hoặc mật khẩu không đúng"
	msgCourseNameReq = "Tên khóa học không được để trống"
	msgEventNameReq  = "Tên sự kiện không được để trống"
	msgSaveFailed    = "Không thể lưu. Vui lòng thử lại."
)

var missingFieldNotices = map[campaign.Kind]map[string]string{
	campaign.KindCourse: {
		"courseName":       "Vui lòng nhập tên khóa học!",
		"startDate":        "Vui lòng chọn ngày khai giảng!",
		"duration":         "Vui lòng nhập thời lượng khóa học!",
		"registrationLink": "Vui lòng nhập link đăng ký!",
		"channel":          "Vui lòng chọn kênh truyền thông!",
		"template":         "Vui lòng chọn mẫu nội dung!",
	},
	campaign.KindEvent: {
		"name":     "Vui lòng nhập tên sự kiện!",
		"time":     "Vui lòng chọn thời gian sự kiện!",
		"location": "Vui lòng nhập địa điểm sự kiện!",
		"audience": "Vui lòng nhập đối tượng tham gia!",
		"channel":  "Vui lòng chọn kênh truyền thông!",
		"template": "Vui lòng chọn mẫu nội dung!",
	},
}

// redirect notice codes, carried as ?notice= after a POST.
var redirectNotices = map[string]string{
	"deleted":  "Đã xóa mục đã lưu",
	"renamed":  "Đã đổi tên mục đã lưu",
	"imported": "Đã nhập dữ liệu",
}

// generateNotice maps a generate failure to the toast for its first missing field.
func generateNotice(kind campaign.Kind, err error) *Notice {
	if missing := errors.MissingFields(err); len(missing) > 0 {
		if msg, ok := missingFieldNotices[kind][missing[0]]; ok {
			return &Notice{Kind: "error", Message: msg}
		}
	}
	if errors.Is(err, errors.ErrInvalidRequest) {
		return &Notice{Kind: "error", Message: errors.Summary(err)}
	}
	return &Notice{Kind: "error", Message: msgGenerateError}
}

func savedNotice(title string) *Notice {
	return &Notice{Kind: "success", Message: fmt.Sprintf("Đã lưu %q vào danh sách! Dữ liệu sẽ được giữ nguyên dù bạn tải lại trang.", title)}
}

func loadedNotice(title string) *Notice {
	return &Notice{Kind: "success", Message: fmt.Sprintf("Đã tải dữ liệu: %q", title)}
}
