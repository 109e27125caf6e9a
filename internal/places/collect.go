package places

import (
	"context"

	"golang.org/x/sync/errgroup"

	"haoshiji/internal/logger"
	"haoshiji/internal/models"
)

// CollectOptions：搜索 + 评论补齐参数
type CollectOptions struct {
	SearchOptions
	MaxReviews int
	Workers    int
}

// 文档注释：搜索餐厅并并发补齐评论
// 约束：单家评论获取失败只记录日志，评论置为空列表，不中断整体；搜索失败或 ctx 取消时返回错误；结果顺序与搜索结果一致。
func (c *Client) Collect(ctx context.Context, query string, opt CollectOptions) ([]models.Restaurant, error) {
	list, err := c.SearchText(ctx, query, opt.SearchOptions)
	if err != nil {
		return nil, err
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range list {
		i := i // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reviews, err := c.Reviews(gctx, list[i].PlaceID, opt.MaxReviews)
			if err != nil {
				logger.L().Warn("places_reviews_failed", "name", list[i].Name, "place_id", list[i].PlaceID, "err", err)
				reviews = []models.Review{}
			}
			list[i].Reviews = reviews
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return list, nil
}
