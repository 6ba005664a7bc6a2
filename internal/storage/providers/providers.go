package providers

import "github.com/jackc/pgx/v5/pgxpool"

type Providers struct {
	AuthProvider      *AuthProvider
	UserProvider      *UserProvider
	TemplateProvider  *TemplateProvider
	MicrositeProvider *MicrositeProvider
	SiteProvider      *SiteProvider
	ScopeProvider     *ScopeProvider
	GuestProvider     *GuestProvider
	WishProvider      *WishProvider
	MediaProvider     *MediaProvider
	StatsProvider     *StatsProvider
}

func New(db *pgxpool.Pool) *Providers {
	return &Providers{
		AuthProvider:      NewAuthProvider(db),
		UserProvider:      NewUserProvider(db),
		TemplateProvider:  NewTemplateProvider(db),
		MicrositeProvider: NewMicrositeProvider(db),
		SiteProvider:      NewSiteProvider(db),
		ScopeProvider:     NewScopeProvider(db),
		GuestProvider:     NewGuestProvider(db),
		WishProvider:      NewWishProvider(db),
		MediaProvider:     NewMediaProvider(db),
		StatsProvider:     NewStatsProvider(db),
	}
}
