// Package catalog 提供流媒体曲库的基础设施实现。
//
// SpotifyCatalog 基于 Spotify Web API（client credentials 授权），
// MemoryCatalog 是内存实现，用于测试/开发。
package catalog

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/tunekit/tunekit/core"
)

const (
	// Spotify API 的批量上限
	maxArtistsPerRequest = 50
	maxTracksPerRequest  = 50
	maxAlbumsPerRequest  = 20
)

// SpotifyCatalog 是基于 Spotify Web API 的曲库实现。
//
// 所有调用经过限速器，避免触发 API 限流；
// 调用失败返回包装了 core.ErrCatalogUnavailable 的错误，调用方局部降级。
type SpotifyCatalog struct {
	client  *spotify.Client
	limiter *rate.Limiter
	market  string
}

// SpotifyConfig 是 Spotify 客户端配置。
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	// Market 是曲目可用性市场（ISO 3166-1 国家码），默认 "US"
	Market string
	// RequestsPerSecond 限速，默认 10
	RequestsPerSecond float64
}

// NewSpotifyCatalog 创建基于 client credentials 授权的长生命周期客户端。
func NewSpotifyCatalog(ctx context.Context, cfg SpotifyConfig) (*SpotifyCatalog, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("spotify: client id and secret are required")
	}
	config := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := config.Client(ctx)

	market := cfg.Market
	if market == "" {
		market = "US"
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}

	return &SpotifyCatalog{
		client:  spotify.New(httpClient),
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		market:  market,
	}, nil
}

// NewSpotifyCatalogFromClient 复用宿主应用已有的客户端（测试时可注入）。
func NewSpotifyCatalogFromClient(client *spotify.Client) *SpotifyCatalog {
	return &SpotifyCatalog{
		client:  client,
		limiter: rate.NewLimiter(10, 1),
		market:  "US",
	}
}

func (s *SpotifyCatalog) Name() string { return "spotify" }

// Artists 批量获取歌手元信息；缺失 ID 静默省略。
func (s *SpotifyCatalog) Artists(ctx context.Context, ids []string) ([]core.Artist, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	out := make([]core.Artist, 0, len(ids))
	for i := 0; i < len(ids); i += maxArtistsPerRequest {
		end := i + maxArtistsPerRequest
		if end > len(ids) {
			end = len(ids)
		}

		batch := make([]spotify.ID, 0, end-i)
		for _, id := range ids[i:end] {
			batch = append(batch, spotify.ID(id))
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		artists, err := s.client.GetArtists(ctx, batch...)
		if err != nil {
			return nil, catalogErr("get artists", err)
		}
		for _, a := range artists {
			if a == nil {
				continue
			}
			out = append(out, convertArtist(a))
		}
	}
	return out, nil
}

// ArtistTopItems 获取歌手的热门单曲，按曲库热度降序。
// 附带一次歌手查询以补全流派标签。
func (s *SpotifyCatalog) ArtistTopItems(ctx context.Context, artistID string, limit int) ([]*core.Item, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	artist, err := s.client.GetArtist(ctx, spotify.ID(artistID))
	if err != nil {
		return nil, catalogErr("get artist", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	tracks, err := s.client.GetArtistsTopTracks(ctx, spotify.ID(artistID), s.market)
	if err != nil {
		return nil, catalogErr("get artist top tracks", err)
	}

	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}

	out := make([]*core.Item, 0, len(tracks))
	for i := range tracks {
		item := convertTrack(&tracks[i])
		item.Genres = artist.Genres
		out = append(out, item)
	}
	return out, nil
}

// RelatedArtists 获取相似歌手。
func (s *SpotifyCatalog) RelatedArtists(ctx context.Context, artistID string) ([]core.Artist, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	artists, err := s.client.GetRelatedArtists(ctx, spotify.ID(artistID))
	if err != nil {
		return nil, catalogErr("get related artists", err)
	}

	out := make([]core.Artist, 0, len(artists))
	for i := range artists {
		out = append(out, convertArtist(&artists[i]))
	}
	return out, nil
}

// SearchByGenre 按流派搜索单曲。
// Spotify 的 track 对象不携带流派，这里为结果统一打上搜索流派。
func (s *SpotifyCatalog) SearchByGenre(ctx context.Context, genre string, limit int) ([]*core.Item, error) {
	if limit <= 0 {
		limit = 20
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("genre:%q", genre)
	result, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, catalogErr("search by genre", err)
	}

	var out []*core.Item
	if result.Tracks != nil {
		for i := range result.Tracks.Tracks {
			item := convertTrack(&result.Tracks.Tracks[i])
			item.Genres = []string{genre}
			out = append(out, item)
		}
	}
	return out, nil
}

// Items 批量补全 (id, type) 对应的元信息；缺失条目静默省略。
func (s *SpotifyCatalog) Items(ctx context.Context, refs []core.ItemRef) ([]*core.Item, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	var trackIDs, albumIDs []spotify.ID
	for _, ref := range refs {
		switch ref.Type {
		case core.TypeTrack:
			trackIDs = append(trackIDs, spotify.ID(ref.ID))
		case core.TypeAlbum:
			albumIDs = append(albumIDs, spotify.ID(ref.ID))
		}
	}

	byKey := make(map[string]*core.Item, len(refs))

	for i := 0; i < len(trackIDs); i += maxTracksPerRequest {
		end := i + maxTracksPerRequest
		if end > len(trackIDs) {
			end = len(trackIDs)
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		tracks, err := s.client.GetTracks(ctx, trackIDs[i:end])
		if err != nil {
			return nil, catalogErr("get tracks", err)
		}
		for _, t := range tracks {
			if t == nil {
				continue
			}
			item := convertTrack(t)
			byKey[item.Key()] = item
		}
	}

	for i := 0; i < len(albumIDs); i += maxAlbumsPerRequest {
		end := i + maxAlbumsPerRequest
		if end > len(albumIDs) {
			end = len(albumIDs)
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		albums, err := s.client.GetAlbums(ctx, albumIDs[i:end])
		if err != nil {
			return nil, catalogErr("get albums", err)
		}
		for _, a := range albums {
			if a == nil {
				continue
			}
			item := convertAlbum(a)
			byKey[item.Key()] = item
		}
	}

	// 按入参顺序输出，缺失条目省略
	out := make([]*core.Item, 0, len(byKey))
	for _, ref := range refs {
		if item, ok := byKey[ref.Key()]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// ---- 转换辅助 ----

func convertArtist(a *spotify.FullArtist) core.Artist {
	artist := core.Artist{
		ID:         string(a.ID),
		Name:       a.Name,
		Genres:     a.Genres,
		Popularity: int(a.Popularity),
	}
	if len(a.Images) > 0 {
		artist.ImageURL = a.Images[0].URL
	}
	return artist
}

func convertTrack(t *spotify.FullTrack) *core.Item {
	item := core.NewItem(string(t.ID), core.TypeTrack)
	item.Name = t.Name
	item.Popularity = int(t.Popularity)
	item.PreviewURL = t.PreviewURL
	if len(t.Artists) > 0 {
		item.ArtistID = string(t.Artists[0].ID)
		item.ArtistName = t.Artists[0].Name
	}
	if len(t.Album.Images) > 0 {
		item.ImageURL = t.Album.Images[0].URL
	}
	return item
}

func convertAlbum(a *spotify.FullAlbum) *core.Item {
	item := core.NewItem(string(a.ID), core.TypeAlbum)
	item.Name = a.Name
	item.Popularity = int(a.Popularity)
	item.Genres = a.Genres
	if len(a.Artists) > 0 {
		item.ArtistID = string(a.Artists[0].ID)
		item.ArtistName = a.Artists[0].Name
	}
	if len(a.Images) > 0 {
		item.ImageURL = a.Images[0].URL
	}
	return item
}

// catalogErr 包装曲库调用错误，调用方用 core.IsUnavailable 判断后局部降级
func catalogErr(op string, err error) error {
	return fmt.Errorf("spotify %s: %v: %w", op, err, core.ErrCatalogUnavailable)
}

// 确保 SpotifyCatalog 实现了 core.CatalogService 接口
var _ core.CatalogService = (*SpotifyCatalog)(nil)
