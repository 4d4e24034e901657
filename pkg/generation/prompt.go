package generation

import (
	"fmt"
	"strings"

	"blog-autowriter-be/internal/entity"
)

const closingInstruction = "반드시 JSON 형식으로 응답하며, 모든 섹션의 type은 'text', 'image', 'subtitle', 'summary' 중 하나여야 합니다."

// BuildPrompt renders the instruction text for one brief. The same brief and
// photo count always produce the same prompt.
func BuildPrompt(brief entity.Brief, photoCount int) string {
	var persona, contextInfo string
	switch brief.Type {
	case entity.BlogTypeRestaurant:
		r := brief.Restaurant
		persona = "대한민국 최고의 맛집 전문 블로거"
		contextInfo = fmt.Sprintf("식당 정보(이름: %s, 위치: %s, 메뉴: %s)",
			strings.TrimSpace(r.Name), strings.TrimSpace(r.Location), orDash(r.MainMenu))
	default:
		g := brief.General
		category := strings.TrimSpace(g.Category)
		if category == "" {
			category = "일상/리뷰"
		}
		persona = fmt.Sprintf("대한민국 최고의 파워 블로거 (분야: %s)", category)
		contextInfo = fmt.Sprintf("주제 정보(제목/주제: %s, 카테고리: %s)", strings.TrimSpace(g.Subject), category)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "당신은 %s입니다.\n", persona)
	fmt.Fprintf(&b, "제공된 사진 %d장과 %s, 분위기: %s, 참고사항: %s를 바탕으로 네이버 블로그 스타일의 정성스러운 포스팅을 작성하세요.\n",
		photoCount, contextInfo, orDash(brief.Mood), orDash(brief.SpecialNotes))
	if brief.Rating > 0 {
		fmt.Fprintf(&b, "작성자의 총 평점은 5점 만점에 %d점입니다. 총평에 자연스럽게 반영하세요.\n", brief.Rating)
	}

	if sample := strings.TrimSpace(brief.StyleSample); sample != "" {
		b.WriteString("\n[문체 참고]\n")
		b.WriteString("아래 글의 말투, 문장 길이, 이모지 사용 습관을 따라 작성하세요. 내용은 따라하지 마세요.\n")
		b.WriteString("<<<\n")
		b.WriteString(sample)
		b.WriteString("\n>>>\n")
	}

	b.WriteString("\n[작성 가이드라인]\n")
	b.WriteString("1. 말투: 친근하면서도 전문성이 느껴지는 해요체와 적절한 이모지 사용.\n")
	b.WriteString("2. 구성: 매력적인 제목(title), 소제목(subtitle), 생생한 경험담(text), 사진에 대한 상세 설명(image), 총평(summary).\n")
	if photoCount > 0 {
		fmt.Fprintf(&b, "3. 사진 설명: 각 image 섹션은 imageIndex(0부터 %d까지)로 제공된 사진과 매칭되어야 합니다. 다른 섹션에는 imageIndex를 넣지 마세요.\n", photoCount-1)
	} else {
		b.WriteString("3. 사진이 없으므로 image 섹션을 만들지 마세요.\n")
	}
	b.WriteString("4. 금지 사항: 마크다운 기호(#, *, - 등)와 HTML 태그 사용 금지. 순수 텍스트로만 작성.\n")
	b.WriteString("5. 태그: 관련 해시태그 5~10개 생성.\n")

	b.WriteString("\n[출력 형식]\n")
	b.WriteString(`{"title": string, "sections": [{"type": "text"|"image"|"subtitle"|"summary", "content": string, "imageIndex": integer(image 섹션만)}], "tags": [string]}`)
	b.WriteString("\n반드시 JSON 형식으로만 응답하세요.\n")
	return b.String()
}

func orDash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "-"
	}
	return s
}
