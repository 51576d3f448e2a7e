package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/somo/core/note"
	"github.com/trezcool/somo/core/store"
)

type noteApi struct {
	deps ServerDeps
}

func registerNoteAPI(g *echo.Group, deps ServerDeps) {
	api := noteApi{deps: deps}

	ng := g.Group("/notes")
	ng.GET("", api.query)
	ng.POST("", api.create)
	ng.PUT("/:id", api.update)
	ng.DELETE("/:id", api.destroy)
	ng.POST("/:id/links", api.createLink)
	ng.DELETE("/:id/links/:linkID", api.destroyLink)

	rg := g.Group("/resources")
	rg.GET("", api.queryResources)
	rg.POST("", api.createResource)
	rg.PUT("/reorder", api.reorderResources)
	rg.PUT("/:id", api.updateResource)
	rg.DELETE("/:id", api.destroyResource)
	rg.POST("/:id/links", api.createResourceLink)
	rg.DELETE("/:id/links/:linkID", api.destroyResourceLink)
}

func (api *noteApi) dispatch(ctx echo.Context, s *store.Store, cmd store.Command) error {
	if err := s.Dispatch(cmd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errHttpNotFound
		}
		return errors.Wrap(err, "dispatching command")
	}
	return nil
}

// Note handlers

func (api *noteApi) query(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s.Tree().Notes)
}

func (api *noteApi) create(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data note.NewNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNote")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	n := data.Note(time.Now().UTC())
	if err := api.dispatch(ctx, s, store.AddNote{Note: n}); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *noteApi) update(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	tree := s.Tree()
	i := tree.FindNote(ctx.Param("id"))
	if i < 0 {
		return errHttpNotFound
	}

	var data note.UpdateNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateNote")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	n := data.Apply(tree.Notes[i], time.Now().UTC())
	if err := api.dispatch(ctx, s, store.UpdateNote{Note: n}); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *noteApi) destroy(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	if err := api.dispatch(ctx, s, store.DeleteNote{NoteID: ctx.Param("id")}); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *noteApi) createLink(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data note.NewNoteLink
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNoteLink")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	link := data.Link()
	if err := api.dispatch(ctx, s, store.AddNoteLink{NoteID: ctx.Param("id"), Link: link}); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, link)
}

func (api *noteApi) destroyLink(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	cmd := store.DeleteNoteLink{NoteID: ctx.Param("id"), LinkID: ctx.Param("linkID")}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Resource handlers

func (api *noteApi) queryResources(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s.Tree().Resources)
}

func (api *noteApi) createResource(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data note.NewResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResource")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	r := data.Resource(time.Now().UTC(), len(s.Tree().Resources))
	if err := api.dispatch(ctx, s, store.AddResource{Resource: r}); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *noteApi) updateResource(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	tree := s.Tree()
	i := tree.FindResource(ctx.Param("id"))
	if i < 0 {
		return errHttpNotFound
	}

	var data note.UpdateResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateResource")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	r := data.Apply(tree.Resources[i])
	if err := api.dispatch(ctx, s, store.UpdateResource{Resource: r}); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *noteApi) destroyResource(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	if err := api.dispatch(ctx, s, store.DeleteResource{ResourceID: ctx.Param("id")}); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *noteApi) reorderResources(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data note.ReorderResources
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReorderResources")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	if err := api.dispatch(ctx, s, store.ReorderResources{IDs: data.IDs}); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s.Tree().Resources)
}

func (api *noteApi) createResourceLink(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}

	var data note.NewResourceLink
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResourceLink")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	link := data.Link()
	cmd := store.AddResourceLink{ResourceID: ctx.Param("id"), Link: link}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, link)
}

func (api *noteApi) destroyResourceLink(ctx echo.Context) error {
	s, err := getContextStore(ctx, api.deps.Stores)
	if err != nil {
		return err
	}
	cmd := store.DeleteResourceLink{ResourceID: ctx.Param("id"), LinkID: ctx.Param("linkID")}
	if err := api.dispatch(ctx, s, cmd); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
