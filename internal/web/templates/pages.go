package templates

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/jules-12/card-creator-pro/internal/auth"
	"github.com/jules-12/card-creator-pro/internal/store"
)

// IndexData feeds the home page.
type IndexData struct {
	// User is nil for anonymous visitors, who get the login form.
	User        *auth.User
	Sets        []store.CardSet
	Extensions  []string
	MaxFileSize int64
	DemoUsers   bool
}

// Index renders the login form or, for a signed-in user, the import form
// and the list of saved card sets.
func Index(d IndexData) templ.Component {
	if d.User == nil {
		return layout("Connexion", "", func(_ context.Context, h *htmlWriter) {
			loginForm(h, d.DemoUsers)
		})
	}
	return layout("Import", d.User.FullName, func(_ context.Context, h *htmlWriter) {
		importForm(h, d)
		cardSets(h, d.Sets)
	})
}

func loginForm(h *htmlWriter, demo bool) {
	h.raw(`<section><h2>Connexion</h2><form id="login">`)
	h.raw(`<div><input name="email" type="email" placeholder="Email" required></div>`)
	h.raw(`<div><input name="password" type="password" placeholder="Mot de passe" required></div>`)
	h.raw(`<button type="submit">Se connecter</button></form><div id="login-error"></div>`)
	if demo {
		h.raw(`<p><small>Comptes de démonstration : admin@mairie-cotonou.bj / admin123, agent@mairie-cotonou.bj / agent123</small></p>`)
	}
	h.raw(`</section><script>
document.getElementById("login").onsubmit=async(e)=>{e.preventDefault();
const f=new FormData(e.target);
const r=await fetch("/api/auth/login",{method:"POST",headers:{"Content-Type":"application/json"},body:JSON.stringify({email:f.get("email"),password:f.get("password")})});
if(r.ok){location.reload();return}
const j=await r.json();document.getElementById("login-error").textContent=j.message+" ("+j.code+")"};
</script>`)
}

func importForm(h *htmlWriter, d IndexData) {
	h.raw(`<section><h2>Importer une liste de conducteurs</h2><form id="import">`)
	h.raw(`<input name="file" type="file" required`)
	h.attr("accept", strings.Join(d.Extensions, ","))
	h.raw(`> <button type="submit">Analyser</button></form>`)
	if d.MaxFileSize > 0 {
		h.raw("<small>Taille maximale : ")
		h.text(fmt.Sprintf("%.1f Mo", float64(d.MaxFileSize)/(1<<20)))
		h.raw("</small>")
	}
	h.raw(`<div id="result"></div></section><script>
let records=[];
const esc=s=>String(s).replace(/[&<>"]/g,c=>({"&":"&amp;","<":"&lt;",">":"&gt;",'"':"&quot;"}[c]));
document.getElementById("import").onsubmit=async(e)=>{e.preventDefault();
const out=document.getElementById("result");out.textContent="Analyse en cours…";
const r=await fetch("/api/import",{method:"POST",body:new FormData(e.target)});
const j=await r.json();
if(!r.ok){out.innerHTML='<div class="alert">'+esc(j.message)+" <small>"+esc(j.code)+"</small></div>";return}
records=j.records;
let html="<p>"+records.length+" fiche(s) sur "+j.totalRows+" ligne(s), feuille "+esc(j.sheet)+"</p>";
for(const w of j.warnings){html+='<p class="warn">'+esc(w)+"</p>"}
html+="<table><tr><th>N° NPC</th><th>Nom</th><th>Prénoms</th><th>Téléphone</th><th>Arrondissement</th></tr>";
for(const c of records.slice(0,50)){html+="<tr><td>"+esc(c.npc)+"</td><td>"+esc(c.nom)+"</td><td>"+esc(c.prenoms)+"</td><td>"+esc(c.telephone)+"</td><td>"+esc(c.arrondissement)+"</td></tr>"}
html+='</table><p><input id="set-name" placeholder="Nom du lot" value="'+esc(j.fileName)+'"> <button id="save">Enregistrer</button></p>';
out.innerHTML=html;
document.getElementById("save").onclick=async()=>{
const s=await fetch("/api/card-sets",{method:"POST",headers:{"Content-Type":"application/json"},body:JSON.stringify({name:document.getElementById("set-name").value,cards:records})});
const set=await s.json();if(s.ok){location.href="/sets/"+set.id}else{alert(set.message)}}};
</script>`)
}

func cardSets(h *htmlWriter, sets []store.CardSet) {
	h.raw("<section><h2>Lots enregistrés</h2>")
	if len(sets) == 0 {
		h.raw("<p>Aucun lot enregistré.</p></section>")
		return
	}
	h.raw("<table><tr><th>Nom</th><th>Cartes</th><th>Modifié le</th><th></th></tr>")
	for _, s := range sets {
		h.raw("<tr><td>")
		h.text(s.Name)
		h.raw("</td><td>")
		h.text(fmt.Sprint(len(s.Records)))
		h.raw("</td><td>")
		h.text(s.UpdatedAt.Format("02/01/2006 15:04"))
		h.raw(`</td><td><a class="btn"`)
		h.attr("href", "/sets/"+s.ID)
		h.raw(">Ouvrir</a></td></tr>")
	}
	h.raw("</table></section>")
}

// Gallery renders every card of a saved set with export links.
func Gallery(set *store.CardSet, user string) templ.Component {
	return layout(set.Name, user, func(_ context.Context, h *htmlWriter) {
		base := "/api/card-sets/" + set.ID
		h.raw("<section><h2>")
		h.text(set.Name)
		h.raw("</h2><p>")
		h.text(fmt.Sprintf("%d carte(s)", len(set.Records)))
		h.raw(`</p><p><a class="btn"`)
		h.attr("href", base+"/export?format=pdf")
		h.raw(`>Exporter en PDF</a> <a class="btn"`)
		h.attr("href", base+"/export?format=zip")
		h.raw(`>Exporter en ZIP</a></p></section><div class="grid">`)
		for _, rec := range set.Records {
			h.raw(`<figure><img loading="lazy"`)
			h.attr("src", base+"/cards/"+url.PathEscape(rec.ID)+".png")
			h.attr("alt", rec.FullName())
			h.raw("><figcaption>")
			h.text(rec.NPC)
			h.raw(` <a`)
			h.attr("href", base+"/cards/"+url.PathEscape(rec.ID)+".pdf")
			h.raw(">PDF</a></figcaption></figure>")
		}
		h.raw("</div>")
	})
}
